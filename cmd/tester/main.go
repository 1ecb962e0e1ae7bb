// Command tester connects to a running relay like a browser would, prints
// every frame it receives and a per-event summary on exit.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"socket-deva/domain"
	"sort"
	"strconv"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/gookit/color"
	"github.com/gorilla/websocket"
	"github.com/olekukonko/tablewriter"
	"golang.org/x/sync/errgroup"
)

type counter struct {
	count int
	last  time.Time
}

func main() {
	cfg, err := LoadConfig()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if cfg.Duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Duration)
		defer cancel()
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, cfg.URL, nil)
	if err != nil {
		log.Fatalf("failed to connect to %s: %v", cfg.URL, err)
	}
	defer conn.Close()
	header(cfg, fmt.Sprintf("  ====== connected to %s ======", cfg.URL))

	counters := make(map[domain.Topic]*counter)
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		for {
			var frame domain.Frame
			if err := conn.ReadJSON(&frame); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("read: %w", err)
			}
			c, ok := counters[frame.Event]
			if !ok {
				c = &counter{}
				counters[frame.Event] = c
			}
			c.count++
			c.last = time.Now()
			printFrame(cfg, frame)
		}
	})

	g.Go(func() error {
		if cfg.SendEvent != "" {
			frame := domain.Frame{Event: domain.Topic(cfg.SendEvent), ID: uuid.NewString(), Data: json.RawMessage(cfg.SendData)}
			if err := conn.WriteJSON(frame); err != nil {
				return fmt.Errorf("send %s: %w", cfg.SendEvent, err)
			}
		}
		<-ctx.Done()
		// Unblocks the reader
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		return conn.Close()
	})

	if err := g.Wait(); err != nil {
		log.Printf("tester stopped: %v", err)
	}
	summary(counters)
}

func header(cfg Config, text string) {
	if cfg.Colours {
		text = color.New(color.BgBlack, color.FgGreen).Render(text)
	}
	fmt.Println(text)
}

func printFrame(cfg Config, frame domain.Frame) {
	event := string(frame.Event)
	if cfg.Colours {
		event = color.FgCyan.Render(event)
	}
	fmt.Printf("%s %s %s\n", time.Now().Format("15:04:05.000"), event, string(frame.Data))
}

func summary(counters map[domain.Topic]*counter) {
	events := make([]string, 0, len(counters))
	for event := range counters {
		events = append(events, string(event))
	}
	sort.Strings(events)

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Event", "Frames", "Last"})
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)
	for _, event := range events {
		c := counters[domain.Topic(event)]
		table.Append([]string{event, strconv.Itoa(c.count), c.last.Format("15:04:05")})
	}
	table.Render()
}
