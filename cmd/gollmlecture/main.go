package main

import (
	"os"

	"github.com/eternnoir/gollmlecture/cmd/gollmlecture/cmd"
	"github.com/eternnoir/gollmlecture/pkg/logger"
)

func main() {
	if err := cmd.Execute(); err != nil {
		logger.Error().Err(err).Msg("Application execution failed")
		os.Exit(1)
	}
}
