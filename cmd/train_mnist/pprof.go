package main

import (
	"os"
	"runtime/pprof"

	"github.com/rs/zerolog/log"
)

// profile collects cpu samples into default.pgo until the returned func runs.
func profile() func() {
	f, err := os.Create("default.pgo")
	if err != nil {
		log.Error().Err(err).Msg("pgo")
		return func() {}
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		log.Error().Err(err).Msg("pgo")
		f.Close()
		return func() {}
	}
	return func() {
		pprof.StopCPUProfile()
		f.Close()
	}
}
