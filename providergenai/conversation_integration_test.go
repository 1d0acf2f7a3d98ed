package providergenai_test

import (
	"context"
	"os"
	"testing"
	"time"

	"google.golang.org/genai"

	"github.com/gloop-agent/gloop/providergenai"
)

func setupConversation(t *testing.T) *providergenai.Conversation {
	t.Helper()
	apiKey := os.Getenv("GLOOP_GEMINI_API_KEY")
	if apiKey == "" {
		t.Skip("Skipping: GLOOP_GEMINI_API_KEY not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		t.Fatalf("genai.NewClient: %v", err)
	}
	return providergenai.New(client, "gemini-2.0-flash")
}

// TestIntegrationSendRoundTrips exercises a real Gemini call; it only runs
// when GLOOP_GEMINI_API_KEY is set.
func TestIntegrationSendRoundTrips(t *testing.T) {
	conv := setupConversation(t)

	msg, err := conv.Send(context.Background(), "Reply with the single word: pong")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if msg.Content == "" {
		t.Fatalf("expected a non-empty reply")
	}
}
