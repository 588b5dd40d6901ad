package pkg

import "analytics"

// AssertNoError aborts startup on an error that leaves the process unusable.
func AssertNoError(err error) {
	if err != nil {
		analytics.Logger.Error().Err(err).Msg("Error occurred that should not have occurred.")
		panic(err)
	}
}
