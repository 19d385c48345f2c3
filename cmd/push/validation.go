package push

import (
	"fmt"
	"net/url"

	"github.com/leakguard-io/leakguard/pkg/shared/files"
)

// validatePushArgs validates the arguments provided to the push command.
func validatePushArgs(options *RunOptionsPush, args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("the push command takes no positional arguments")
	}

	if options.APIURL == "" {
		return fmt.Errorf("the 'api-url' flag must be specified")
	}
	parsed, err := url.Parse(options.APIURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("the 'api-url' flag must be a valid absolute URL: %q", options.APIURL)
	}

	if options.InputFile == "" {
		return fmt.Errorf("the 'input-file' flag must be specified")
	}
	inputFile, err := files.ExpandPath(options.InputFile)
	if err != nil {
		return fmt.Errorf("failed to resolve the 'input-file' flag: %w", err)
	}
	options.InputFile = inputFile
	if err := files.ValidatePath(options.InputFile); err != nil {
		return fmt.Errorf("the 'input-file' flag is invalid: %w", err)
	}

	return nil
}
