package models

// Parameters for the AES-256-GCM field encryption layer.
const (
	NonceSize  = 12
	KeySize    = 32
	Iterations = 100000
)
