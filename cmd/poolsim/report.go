package main

import (
	"io"
	"os"
	"time"

	gojson "github.com/goccy/go-json"
	"github.com/shirou/gopsutil/v3/process"

	"github.com/ajitpratap0/respawn/pkg/instance"
)

// Report summarises a simulation run.
type Report struct {
	Frames         int                       `json:"frames"`
	Elapsed        time.Duration             `json:"elapsed_ns"`
	Pools          map[string]instance.Stats `json:"pools"`
	LiveAtEnd      int                       `json:"live_at_end"`
	SceneObjects   int                       `json:"scene_objects"`
	AssetFailures  int                       `json:"asset_failures"`
	RecordsCreated int64                     `json:"records_created"`
	RSSBytes       uint64                    `json:"rss_bytes,omitempty"`
}

func (s *simulation) report(frames, live int, elapsed time.Duration) *Report {
	r := &Report{
		Frames:         frames,
		Elapsed:        elapsed,
		Pools:          make(map[string]instance.Stats),
		LiveAtEnd:      live,
		SceneObjects:   s.scene.Len(),
		AssetFailures:  s.failed,
		RecordsCreated: s.records.Stats().Created,
		RSSBytes:       residentMemory(),
	}
	for _, p := range s.recyclers() {
		r.Pools[p.name] = p.Stats()
	}
	return r
}

// residentMemory returns the resident set size of this process, or zero
// when the platform does not report it.
func residentMemory() uint64 {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return 0
	}
	info, err := proc.MemoryInfo()
	if err != nil {
		return 0
	}
	return info.RSS
}

func writeReport(w io.Writer, r *Report) error {
	data, err := gojson.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}
