package project

import (
	"fmt"
	"net/url"
)

// validateProjectCreateArgs validates the arguments provided to the project
// create command.
func validateProjectCreateArgs(options *RunOptionsProject, args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("the project create command takes no positional arguments")
	}

	if options.APIURL == "" {
		return fmt.Errorf("the 'api-url' flag must be specified")
	}
	parsed, err := url.Parse(options.APIURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("the 'api-url' flag must be a valid absolute URL: %q", options.APIURL)
	}

	if options.RepoID == "" {
		return fmt.Errorf("the 'repo-id' flag must be specified")
	}

	return nil
}
