package net

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"sync"

	"github.com/peterkuimelis/crictrumps/internal/game"
)

// Client connects to a game server and provides a terminal REPL.
type Client struct {
	conn net.Conn
	in   io.Reader
	out  io.Writer
	mu   sync.Mutex // guards out
}

// NewClient creates a REPL client over an established connection.
func NewClient(conn net.Conn, in io.Reader, out io.Writer) *Client {
	return &Client{conn: conn, in: in, out: out}
}

// Connect dials a server and runs the REPL.
func Connect(ctx context.Context, addr string, in io.Reader, out io.Writer) error {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer conn.Close()

	fmt.Fprintln(out, "Connected!")
	return NewClient(conn, in, out).Run(ctx)
}

// Run renders server messages and sends commands typed by the user. It
// returns when the user quits or the server closes the connection.
func (c *Client) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		<-ctx.Done()
		c.conn.Close()
	}()

	readErr := make(chan error, 1)
	go func() { readErr <- c.readLoop() }()

	inputDone := make(chan error, 1)
	go func() { inputDone <- c.inputLoop() }()

	select {
	case err := <-readErr:
		return err
	case err := <-inputDone:
		return err
	case <-ctx.Done():
		return nil
	}
}

func (c *Client) readLoop() error {
	dec := json.NewDecoder(c.conn)
	for {
		var msg ServerMessage
		if err := dec.Decode(&msg); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) || errors.Is(err, io.ErrClosedPipe) {
				return nil
			}
			return fmt.Errorf("read message: %w", err)
		}
		c.render(msg)
	}
}

func (c *Client) inputLoop() error {
	enc := json.NewEncoder(c.conn)
	scanner := bufio.NewScanner(c.in)
	c.printf("%s\n", helpText)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "h" || line == "help" || line == "?" {
			c.printf("%s\n", helpText)
			continue
		}
		msg, err := ParseCommand(line)
		if err != nil {
			c.printf("%v\n", err)
			continue
		}
		if err := enc.Encode(msg); err != nil {
			return fmt.Errorf("send %s: %w", msg.Type, err)
		}
		if msg.Type == TypeQuit {
			return nil
		}
	}
	// stdin closed: leave the game
	_ = enc.Encode(ClientMessage{Type: TypeQuit})
	return scanner.Err()
}

const helpText = `Commands:
  s                start a game
  <n>              select stat number n from your card
  <stat> <format>  select by name, e.g. "runs odi" or "bowlingAverage test"
  r                restart
  q                quit`

// ParseCommand turns a REPL line into a client message.
func ParseCommand(line string) (ClientMessage, error) {
	fields := strings.Fields(strings.TrimSpace(line))
	if len(fields) == 0 {
		return ClientMessage{}, errors.New("empty command")
	}

	if len(fields) == 1 {
		switch strings.ToLower(fields[0]) {
		case "s", "start":
			return ClientMessage{Type: TypeStart}, nil
		case "r", "restart":
			return ClientMessage{Type: TypeRestart}, nil
		case "q", "quit", "exit":
			return ClientMessage{Type: TypeQuit}, nil
		}
		n, err := strconv.Atoi(fields[0])
		if err != nil {
			return ClientMessage{}, fmt.Errorf("unknown command %q (h for help)", fields[0])
		}
		sel, ok := SelectionByIndex(n)
		if !ok {
			return ClientMessage{}, fmt.Errorf("stat number must be between 1 and %d", len(Selections()))
		}
		return ClientMessage{Type: TypeSelect, Stat: string(sel.Stat), Format: string(sel.Format)}, nil
	}

	if len(fields) != 2 {
		return ClientMessage{}, errors.New("select with <stat> <format>, e.g. runs odi")
	}
	stat, ok := lookupStat(fields[0])
	if !ok {
		return ClientMessage{}, fmt.Errorf("unknown stat %q", fields[0])
	}
	format, err := game.ParseFormat(strings.ToLower(fields[1]))
	if err != nil {
		return ClientMessage{}, err
	}
	return ClientMessage{Type: TypeSelect, Stat: string(stat), Format: string(format)}, nil
}

func lookupStat(s string) (game.StatName, bool) {
	for _, n := range game.StatNames {
		if strings.EqualFold(s, string(n)) {
			return n, true
		}
	}
	return "", false
}

// --- Rendering ---

func (c *Client) printf(format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, format, args...)
}

func (c *Client) render(msg ServerMessage) {
	switch msg.Type {
	case TypeNotify:
		if ev := msg.Event; ev != nil {
			phase := ev.Phase
			for len(phase) < 18 {
				phase += " "
			}
			c.printf("R%-3d %s| %s\n", ev.Round, phase, ev.Details)
		}
	case TypeState:
		c.printf("%s", RenderState(msg.State))
	case TypeError:
		c.printf("! %s\n", msg.Error)
	}
}

// RenderState draws the table as the human sees it.
func RenderState(sv *StateView) string {
	if sv == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString("\n╔══════════════════════════════════════════════════════╗\n")
	if sv.State == game.StateMenu.String() {
		fmt.Fprintf(&b, "║  %s\n", sv.Message)
		b.WriteString("╚══════════════════════════════════════════════════════╝\n")
		return b.String()
	}

	fmt.Fprintf(&b, "║  Round %d | You: %d cards | Computer: %d cards\n", sv.Round, sv.You.DeckCount, sv.Computer.DeckCount)
	b.WriteString("║──────────────────────────────────────────────────────\n")
	if sv.You.Card != nil {
		writeCard(&b, "YOUR CARD", sv.You.Card, sv.Selection)
	}
	if sv.Computer.Card != nil {
		b.WriteString("║──────────────────────────────────────────────────────\n")
		writeCard(&b, "COMPUTER", sv.Computer.Card, sv.Selection)
	} else if sv.Round > 0 {
		b.WriteString("║  COMPUTER: [face down]\n")
	}
	b.WriteString("╚══════════════════════════════════════════════════════╝\n")

	fmt.Fprintf(&b, "%s\n", sv.Message)
	if sv.GameOver {
		b.WriteString("═══════════════════════════════════\n")
		b.WriteString("          GAME OVER\n")
		b.WriteString("═══════════════════════════════════\n")
		if sv.Result != "" {
			fmt.Fprintf(&b, "(%s) r to play again, q to quit\n", sv.Result)
		}
	} else if sv.IsYourTurn {
		b.WriteString("Choose a stat: <n> or <stat> <format>\n")
	}
	return b.String()
}

// writeCard prints the stat table with one column per format. The chosen
// stat is marked with '>'.
func writeCard(b *strings.Builder, title string, cv *CardView, sel *SelectionView) {
	fmt.Fprintf(b, "║  %s: %s (%s, %s)\n", title, cv.Name, cv.Country, cv.Span)
	fmt.Fprintf(b, "║  %-16s", "")
	for _, f := range game.Formats {
		fmt.Fprintf(b, " %-13s", strings.ToUpper(string(f)))
	}
	b.WriteString("\n")

	byKey := make(map[string]StatView, len(cv.Stats))
	for _, st := range cv.Stats {
		byKey[st.Format+"/"+st.Stat] = st
	}
	for _, stat := range game.StatNames {
		fmt.Fprintf(b, "║  %-16s", stat.Label())
		for _, f := range game.Formats {
			st := byKey[string(f)+"/"+string(stat)]
			mark := " "
			if sel != nil && sel.Stat == st.Stat && sel.Format == st.Format {
				mark = ">"
			}
			fmt.Fprintf(b, " %s%2d) %-8s", mark, st.Index, st.Value)
		}
		b.WriteString("\n")
	}
}
