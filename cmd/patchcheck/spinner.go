package main

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/x/ansi"

	"patchcheck/internal/pipeline"
)

// progressIndicator shows that a slow step is in flight.
type progressIndicator interface {
	Stage(detail string)
	Clear()
	Stop()
}

// progressSource shows the indicator while a feed is being fetched and
// clears it before the outcome is reported.
type progressSource struct {
	source    pipeline.TitleSource
	indicator progressIndicator
}

func (p progressSource) Titles(ctx context.Context, feedURL string) ([]string, error) {
	p.indicator.Stage(feedLabel(feedURL))
	defer p.indicator.Clear()
	return p.source.Titles(ctx, feedURL)
}

func feedLabel(feedURL string) string {
	u, err := url.Parse(feedURL)
	if err != nil || u.Host == "" {
		return feedURL
	}
	return strings.TrimPrefix(u.Host, "www.") + strings.TrimRight(u.Path, "/")
}

// feedSpinner draws a single-line spinner. It stays hidden until delay has
// passed so fast fetches never flicker.
type feedSpinner struct {
	writer        io.Writer
	delay         time.Duration
	frameInterval time.Duration
	frames        []string

	stopCh chan struct{}
	doneCh chan struct{}
	once   sync.Once

	mu       sync.Mutex
	frameIdx int
	detail   string
	active   bool
	visible  bool
	drawn    bool
}

func newFeedSpinner(w io.Writer, delay time.Duration) *feedSpinner {
	return newCustomFeedSpinner(w, delay, spinner.Line.FPS)
}

func newCustomFeedSpinner(w io.Writer, delay, frameInterval time.Duration) *feedSpinner {
	if w == nil {
		w = io.Discard
	}
	sp := &feedSpinner{
		writer:        w,
		delay:         delay,
		frameInterval: frameInterval,
		frames:        spinner.Line.Frames,
		stopCh:        make(chan struct{}),
		doneCh:        make(chan struct{}),
		visible:       delay <= 0,
	}
	go sp.loop()
	return sp
}

func (s *feedSpinner) Stage(detail string) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.detail = strings.TrimSpace(detail)
	s.active = true
	if s.visible {
		s.render()
	}
}

// Clear hides the spinner until the next Stage. It returns only after the
// line has been erased.
func (s *feedSpinner) Clear() {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = false
	s.clearLine()
}

func (s *feedSpinner) Stop() {
	if s == nil {
		return
	}
	s.once.Do(func() {
		close(s.stopCh)
		<-s.doneCh
	})
}

func (s *feedSpinner) loop() {
	defer close(s.doneCh)

	var delayCh <-chan time.Time
	if s.delay > 0 {
		timer := time.NewTimer(s.delay)
		defer timer.Stop()
		delayCh = timer.C
	}

	ticker := time.NewTicker(s.frameInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			s.mu.Lock()
			s.clearLine()
			s.mu.Unlock()
			return
		case <-ticker.C:
			s.mu.Lock()
			if s.visible && s.active {
				s.render()
			}
			s.mu.Unlock()
		case <-delayCh:
			delayCh = nil
			s.mu.Lock()
			s.visible = true
			if s.active {
				s.render()
			}
			s.mu.Unlock()
		}
	}
}

// render and clearLine expect s.mu to be held.
func (s *feedSpinner) render() {
	frame := s.frames[s.frameIdx%len(s.frames)]
	s.frameIdx++
	_, _ = fmt.Fprintf(s.writer, "\r%s%s %s", ansi.EraseEntireLine, frame, formatFeedMessage(s.detail))
	s.drawn = true
}

func (s *feedSpinner) clearLine() {
	if !s.drawn {
		return
	}
	_, _ = fmt.Fprint(s.writer, "\r"+ansi.EraseEntireLine)
	s.drawn = false
}

func formatFeedMessage(detail string) string {
	const witty = "Scrolling the feed for patch notes..."
	if detail == "" {
		return witty
	}
	return fmt.Sprintf("%s - %s", witty, detail)
}
