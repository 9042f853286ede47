package model

// GenerateResponse is the JSON body answered by POST /generate. Midi holds
// the serialized SMF (base64 in transit).
type GenerateResponse struct {
	Melody []string `json:"melody"`
	Tracks int      `json:"tracks"`
	Seed   int64    `json:"seed"`
	Midi   []byte   `json:"midi"`
}

type ErrorResponse struct {
	Error string `json:"detail"`
}
