// ymplay - command-line player for YM register stream files.

package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/pflag"
	"github.com/sqweek/dialog"
	"golang.org/x/term"

	"github.com/intuitionamiga/ymstream"
)

var logger *log.Logger

func main() {
	logger = log.New(os.Stdout, "", log.Ldate|log.Ltime)

	var (
		volume     int
		sampleRate int
		noLoop     bool
		dump       bool
		infoOnly   bool
	)
	pflag.IntVarP(&volume, "volume", "v", 100, "output volume in percent")
	pflag.IntVarP(&sampleRate, "rate", "r", 44100, "output sample rate in Hz")
	pflag.BoolVar(&noLoop, "no-loop", false, "stop after one pass instead of looping")
	pflag.BoolVarP(&dump, "dump", "d", false, "dump the decoded header")
	pflag.BoolVarP(&infoOnly, "info", "i", false, "print song information and exit")
	pflag.Parse()

	path, err := choosePath(pflag.Args())
	if err != nil {
		if errors.Is(err, dialog.ErrCancelled) {
			logger.Printf("User cancelled the file dialog")
			os.Exit(1)
		}
		logger.Fatalf("failed to determine file path: %v", err)
	}

	file, err := ymstream.DecodeFile(path)
	if err != nil {
		logger.Fatalf("decode error: %v", err)
	}

	printInfo(path, file)
	if dump {
		spew.Dump(songSummaryOf(file))
	}
	if infoOnly {
		return
	}

	renderer := ymstream.NewSongRenderer(file, sampleRate)
	renderer.SetVolume(float32(volume) / 100)
	if noLoop {
		renderer.SetLoop(false)
	}

	sink, err := ymstream.NewAudioSink(sampleRate)
	if err != nil {
		logger.Fatalf("audio init failed: %v", err)
	}
	defer sink.Close()
	sink.SetSource(renderer)
	sink.Start()

	fmt.Println("[space] pause/resume  [r] rewind  [q] quit")
	if err := controlLoop(renderer); err != nil {
		logger.Fatalf("terminal error: %v", err)
	}
}

// controlLoop runs the interactive keyboard handling until the song ends
// or the user quits.
func controlLoop(renderer *ymstream.SongRenderer) error {
	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		// Not a terminal; just block until the song is done.
		for !renderer.Done() {
			time.Sleep(100 * time.Millisecond)
		}
		return nil
	}
	defer term.Restore(fd, oldState)

	keys := make(chan byte, 8)
	go func() {
		buf := make([]byte, 1)
		for {
			if n, err := os.Stdin.Read(buf); err != nil || n == 0 {
				close(keys)
				return
			}
			keys <- buf[0]
		}
	}()

	paused := false
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case key, ok := <-keys:
			if !ok {
				return nil
			}
			switch key {
			case ' ':
				paused = !paused
				renderer.SetPaused(paused)
			case 'r':
				renderer.Rewind()
			case 'q', 3: // q or Ctrl-C
				return nil
			}
		case <-ticker.C:
			if renderer.Done() {
				return nil
			}
		}
	}
}

func printInfo(path string, file *ymstream.YMFile) {
	logger.Printf("File:     %s (%s)", filepath.Base(path), file.Version)
	if file.Title != "" {
		logger.Printf("Title:    %s", file.Title)
	}
	if file.Author != "" {
		logger.Printf("Author:   %s", file.Author)
	}
	if file.Comments != "" {
		logger.Printf("Comment:  %s", file.Comments)
	}
	secs := file.DurationSeconds()
	logger.Printf("Frames:   %d @ %d Hz (%d:%02d)", file.FrameCount(), file.FrameRate,
		int(secs)/60, int(secs)%60)
	logger.Printf("Clock:    %d Hz, loop frame %d, %d digi-drums",
		file.ClockHz, file.LoopFrame, len(file.DigiDrums))
	for _, warning := range file.Warnings {
		logger.Printf("Warning:  %s", warning)
	}
}

// songSummary is the --dump view: everything but the frame table, which
// would swamp the output.
type songSummary struct {
	Version     string
	FrameCount  uint32
	FrameRate   uint16
	ClockHz     uint32
	LoopFrame   uint32
	Title       string
	Author      string
	Comments    string
	Interleaved bool
	DrumSizes   []int
	Warnings    []string
}

func songSummaryOf(file *ymstream.YMFile) songSummary {
	drumSizes := make([]int, len(file.DigiDrums))
	for i, drum := range file.DigiDrums {
		drumSizes[i] = len(drum)
	}
	return songSummary{
		Version:     file.Version.String(),
		FrameCount:  file.FrameCount(),
		FrameRate:   file.FrameRate,
		ClockHz:     file.ClockHz,
		LoopFrame:   file.LoopFrame,
		Title:       file.Title,
		Author:      file.Author,
		Comments:    file.Comments,
		Interleaved: file.Interleaved,
		DrumSizes:   drumSizes,
		Warnings:    file.Warnings,
	}
}

// choosePath returns the file path either from the command-line args
// or from an interactive file dialog.
func choosePath(args []string) (string, error) {
	if len(args) > 0 {
		absPath, err := filepath.Abs(args[0])
		if err != nil {
			return "", fmt.Errorf("cannot get absolute path: %w", err)
		}
		return absPath, nil
	}

	path, err := dialog.File().
		Title("Choose a YM file").
		Filter("YM files", "ym", "lha").
		Load()
	if err != nil {
		return "", err
	}
	return path, nil
}
