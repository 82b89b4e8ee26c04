package transmit

import (
	"context"
	"time"

	"github.com/dbehnke/pocsag-nexus/pkg/audio"
	"github.com/dbehnke/pocsag-nexus/pkg/logger"
	"github.com/dbehnke/pocsag-nexus/pkg/metrics"
	"github.com/dbehnke/pocsag-nexus/pkg/pcm"
	"github.com/dbehnke/pocsag-nexus/pkg/pocsag"
)

// PageResult describes a page after it has been rendered and written
type PageResult struct {
	Message  pocsag.Message
	Source   string
	Words    int // encoded codewords including preamble
	PCMBytes int
	Duration time.Duration // on-air duration
	SentAt   time.Time
}

// Transmitter drains the queue, encoding each page and writing the
// rendered PCM to the audio sink. Pages are strictly serialized: one
// transmission finishes, the silence gap follows, then the next page.
type Transmitter struct {
	queue    *Queue
	renderer pcm.Renderer
	sink     audio.Sink
	silence  *SilenceGenerator
	logger   *logger.Logger

	collector *metrics.Collector
	pageLog   *PageLogger
	onPage    func(PageResult)
}

// NewTransmitter creates a transmitter. The silence generator may be
// nil to write pages back to back.
func NewTransmitter(queue *Queue, renderer pcm.Renderer, sink audio.Sink, silence *SilenceGenerator, log *logger.Logger) *Transmitter {
	return &Transmitter{
		queue:    queue,
		renderer: renderer,
		sink:     sink,
		silence:  silence,
		logger:   log.WithComponent("transmit"),
	}
}

// SetCollector attaches a metrics collector
func (t *Transmitter) SetCollector(collector *metrics.Collector) {
	t.collector = collector
}

// SetPageLogger attaches a database page logger
func (t *Transmitter) SetPageLogger(pageLog *PageLogger) {
	t.pageLog = pageLog
}

// SetOnPage attaches a callback invoked after each transmitted page
func (t *Transmitter) SetOnPage(fn func(PageResult)) {
	t.onPage = fn
}

// Run processes pages until the context is cancelled or the queue is
// closed and drained
func (t *Transmitter) Run(ctx context.Context) error {
	t.logger.Info("Transmitter started",
		logger.Int("baud_rate", t.renderer.EffectiveBaudRate()),
		logger.Int("sample_rate", t.renderer.EffectiveSampleRate()))

	for {
		select {
		case <-ctx.Done():
			t.logger.Info("Transmitter stopped")
			return nil
		case page := <-t.queue.C():
			t.transmit(page)
		case <-t.queue.Closed():
			// Queue closed: drain what is left, then stop
			for {
				select {
				case page := <-t.queue.C():
					t.transmit(page)
				default:
					t.logger.Info("Transmitter drained")
					return nil
				}
			}
		}
	}
}

func (t *Transmitter) transmit(page Page) {
	if t.collector != nil {
		t.collector.SetQueueDepth(t.queue.Depth())
	}

	words := page.Message.Encode()
	data := t.renderer.Render(words)

	if err := t.sink.Write(data); err != nil {
		t.logger.Error("Failed to write PCM",
			logger.Error(err),
			logger.Uint32("address", page.Message.Address))
		return
	}

	result := PageResult{
		Message:  page.Message,
		Source:   page.Source,
		Words:    len(words),
		PCMBytes: len(data),
		Duration: t.renderer.Duration(len(words)),
		SentAt:   time.Now(),
	}

	if t.silence != nil {
		gap := pcm.Silence(t.silence.NextLength())
		if err := t.sink.Write(gap); err != nil {
			t.logger.Error("Failed to write silence gap", logger.Error(err))
		} else if t.collector != nil {
			t.collector.SilenceWritten(len(gap))
		}
	}

	if t.collector != nil {
		t.collector.PageEncoded(page.Source, result.Words, result.PCMBytes)
	}
	if t.pageLog != nil {
		t.pageLog.LogPage(result)
	}
	if t.onPage != nil {
		t.onPage(result)
	}

	t.logger.Info("Page transmitted",
		logger.Uint32("address", page.Message.Address),
		logger.Int("function", int(page.Message.Function)),
		logger.Int("words", result.Words),
		logger.Duration("duration", result.Duration),
		logger.String("source", page.Source))
}
