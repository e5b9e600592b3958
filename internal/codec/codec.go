package codec

// Codec compresses whole payloads at once.
type Codec interface {
	// Token returns a coding token associated with the codec itself.
	Token() string
	// Encode returns the compressed input. The input is never modified and the output
	// never aliases it.
	Encode(input []byte) ([]byte, error)
}
