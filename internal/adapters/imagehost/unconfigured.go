package imagehost

import (
	"context"
	"fmt"
)

// Unconfigured stands in when no image host is configured. Uploads fail with a
// plain error so the avatar route answers 500 instead of panicking on a nil
// collaborator.
type Unconfigured struct{}

func (Unconfigured) Upload(context.Context, []byte, string) (string, error) {
	return "", fmt.Errorf("image host is not configured")
}
