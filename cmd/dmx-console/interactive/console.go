// Package interactive provides the interactive command-line interface
// for dmx-console.
package interactive

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chzyer/readline"

	"github.com/dmx-protocol/dmxuart-go/pkg/dmx"
	"github.com/dmx-protocol/dmxuart-go/pkg/sender"
)

// Console handles interactive mode for dmx-console. It keeps a local
// copy of the universe and republishes it after every change.
type Console struct {
	snd *sender.Sender
	rl  *readline.Instance
	buf dmx.Buffer
}

// New creates a new interactive console handler.
func New(snd *sender.Sender) (*Console, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "dmx> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}

	return &Console{snd: snd, rl: rl}, nil
}

// Stdout returns a writer that properly coordinates with the readline
// input. Use this for log output to avoid interfering with the prompt.
func (c *Console) Stdout() io.Writer {
	return c.rl.Stdout()
}

// Run starts the interactive command loop. It returns when the user
// quits or input is closed.
func (c *Console) Run() {
	defer c.rl.Close()

	c.printHelp()

	for {
		line, err := c.rl.Readline()
		if err != nil { // io.EOF or readline.ErrInterrupt
			return
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		parts := strings.Fields(line)
		cmd := strings.ToLower(parts[0])
		args := parts[1:]

		switch cmd {
		case "help", "?":
			c.printHelp()

		case "set", "s":
			c.cmdSet(args)

		case "get", "g":
			c.cmdGet(args)

		case "blackout", "bo":
			c.cmdBlackout()

		case "full":
			c.cmdFull(args)

		case "status":
			c.cmdStatus()

		case "quit", "exit", "q":
			fmt.Fprintln(c.rl.Stdout(), "Exiting...")
			return

		default:
			fmt.Fprintf(c.rl.Stdout(), "Unknown command: %s (type 'help' for commands)\n", cmd)
		}
	}
}

// cmdSet handles "set <channel> <value>".
func (c *Console) cmdSet(args []string) {
	if len(args) != 2 {
		fmt.Fprintln(c.rl.Stdout(), "Usage: set <channel 1-512> <value 0-255>")
		return
	}

	ch, err := parseChannel(args[0])
	if err != nil {
		fmt.Fprintf(c.rl.Stdout(), "Error: %v\n", err)
		return
	}
	v, err := strconv.Atoi(args[1])
	if err != nil || v < 0 || v > 255 {
		fmt.Fprintf(c.rl.Stdout(), "Invalid value: %s (want 0-255)\n", args[1])
		return
	}

	if err := c.buf.SetChannel(ch-1, byte(v)); err != nil {
		fmt.Fprintf(c.rl.Stdout(), "Error: %v\n", err)
		return
	}
	c.publish()
}

// cmdGet handles "get <channel>".
func (c *Console) cmdGet(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(c.rl.Stdout(), "Usage: get <channel 1-512>")
		return
	}

	ch, err := parseChannel(args[0])
	if err != nil {
		fmt.Fprintf(c.rl.Stdout(), "Error: %v\n", err)
		return
	}

	v, err := c.buf.Channel(ch - 1)
	if err != nil {
		fmt.Fprintf(c.rl.Stdout(), "Error: %v\n", err)
		return
	}
	fmt.Fprintf(c.rl.Stdout(), "channel %d = %d\n", ch, v)
}

// cmdBlackout zeroes the whole universe.
func (c *Console) cmdBlackout() {
	c.buf.Blackout()
	c.publish()
	fmt.Fprintln(c.rl.Stdout(), "Blackout")
}

// cmdFull handles "full [channel]": one channel (or the whole universe)
// to 255.
func (c *Console) cmdFull(args []string) {
	if len(args) == 1 {
		ch, err := parseChannel(args[0])
		if err != nil {
			fmt.Fprintf(c.rl.Stdout(), "Error: %v\n", err)
			return
		}
		if err := c.buf.SetChannel(ch-1, 255); err != nil {
			fmt.Fprintf(c.rl.Stdout(), "Error: %v\n", err)
			return
		}
	} else {
		for ch := 0; ch < dmx.UniverseSize; ch++ {
			c.buf.SetChannel(ch, 255)
		}
	}
	c.publish()
}

// cmdStatus prints the sender's cumulative counters.
func (c *Console) cmdStatus() {
	st := c.snd.Stats()
	out := c.rl.Stdout()

	fmt.Fprintln(out, "\nSender status:")
	fmt.Fprintln(out, "-------------------------------------------")
	fmt.Fprintf(out, "  Running:            %v\n", st.Running)
	fmt.Fprintf(out, "  Sleep granularity:  %s\n", st.Granularity)
	fmt.Fprintf(out, "  Frames:             %d\n", st.Frames)
	fmt.Fprintf(out, "  Break start errors: %d\n", st.BreakStartErrors)
	fmt.Fprintf(out, "  Break stop errors:  %d\n", st.BreakStopErrors)
	fmt.Fprintf(out, "  Write errors:       %d\n", st.WriteErrors)
	fmt.Fprintln(out)
}

func (c *Console) publish() {
	if err := c.snd.Publish(&c.buf); err != nil {
		fmt.Fprintf(c.rl.Stdout(), "Publish error: %v\n", err)
	}
}

func (c *Console) printHelp() {
	fmt.Fprintln(c.rl.Stdout(), `
DMX Console Commands:
  set <channel> <value>  - Set a channel level (1-512, 0-255)
  get <channel>          - Show a channel level
  full [channel]         - One channel (or everything) to 255
  blackout               - All channels to zero
  status                 - Show sender counters
  quit                   - Exit`)
}

// parseChannel parses a 1-based channel number.
func parseChannel(s string) (int, error) {
	ch, err := strconv.Atoi(s)
	if err != nil || ch < 1 || ch > dmx.UniverseSize {
		return 0, fmt.Errorf("invalid channel %q (want 1-%d)", s, dmx.UniverseSize)
	}
	return ch, nil
}
