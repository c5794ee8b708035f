package helper

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// NewChunkID returns a unique id for an ingested chunk.
func NewChunkID() string {
	return uuid.NewString()
}

// PrettyPrint dumps a value as indented JSON for dry-run inspection.
func PrettyPrint(v interface{}) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Warn().Err(err).Msg("Error pretty printing")
		return
	}
	fmt.Println(string(b))
}
