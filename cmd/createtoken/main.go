// Command createtoken is the interactive token-creation form. It collects
// three fields, calls the token service, and prints a binary
// success/failure message.
package main

import (
	"context"
	"flag"
	"strconv"

	"github.com/pterm/pterm"

	"github.com/lpaydat/game2048-cli/internal/tokens"
)

const (
	successMessage = "Token created successfully!"
	failureMessage = "Failed to create token."
)

func main() {
	var baseURL string
	flag.StringVar(&baseURL, "url", tokens.DefaultBaseURL, "token service base URL")
	flag.Parse()

	name, _ := pterm.DefaultInteractiveTextInput.WithDefaultText("Token name").Show()
	symbol, _ := pterm.DefaultInteractiveTextInput.WithDefaultText("Symbol").Show()
	supplyText, _ := pterm.DefaultInteractiveTextInput.WithDefaultText("Total supply").Show()

	// Loose parse on purpose: a non-numeric supply passes through as zero
	// and the service rejects it.
	supply, _ := strconv.Atoi(supplyText)

	client := tokens.NewClient(tokens.Config{BaseURL: baseURL})
	result := client.CreateToken(context.Background(), name, symbol, supply)

	if result.Success {
		pterm.Success.Println(successMessage)
	} else {
		pterm.Error.Println(failureMessage)
	}
	if result.Message != "" {
		pterm.Info.Println(result.Message)
	}
}
