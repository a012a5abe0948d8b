package main

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"
)

// profiler records the CPU profile around one command run and writes a heap
// profile once it finishes. Empty paths disable the matching profile.
type profiler struct {
	cpuPath string
	memPath string
	cpu     *os.File
}

func (p *profiler) start() error {
	if p.cpuPath == "" {
		return nil
	}
	f, err := os.Create(p.cpuPath)
	if err != nil {
		return fmt.Errorf("cpu profile: %w", err)
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		return errors.Join(fmt.Errorf("cpu profile %s: %w", p.cpuPath, err), f.Close())
	}
	p.cpu = f
	return nil
}

// stop ends the CPU profile and writes the heap profile, reporting every
// failure rather than the first.
func (p *profiler) stop() error {
	var errs []error
	if p.cpu != nil {
		pprof.StopCPUProfile()
		if err := p.cpu.Close(); err != nil {
			errs = append(errs, fmt.Errorf("cpu profile %s: %w", p.cpuPath, err))
		}
		p.cpu = nil
	}
	if p.memPath != "" {
		if err := writeHeapProfile(p.memPath); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func writeHeapProfile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("mem profile: %w", err)
	}
	runtime.GC()
	writeErr := pprof.WriteHeapProfile(f)
	closeErr := f.Close()
	if err := errors.Join(writeErr, closeErr); err != nil {
		return fmt.Errorf("mem profile %s: %w", path, err)
	}
	return nil
}
