package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/amirbrooks/chatterbox/internal/ui"
)

// runSession reads one command per line until "bye" or end of input, writing
// each reply prefixed with the bot label.
func runSession(in io.Reader, out io.Writer, d ui.Dispatcher, bot string, notice string) error {
	w := bufio.NewWriter(out)
	defer w.Flush()

	reply := func(msg string) {
		fmt.Fprintf(w, "%s: %s\n\n", bot, strings.TrimRight(msg, "\n"))
	}
	reply("Hello! I'm " + bot + ".\nWhat can I do for you?")
	if notice != "" {
		reply(notice)
	}

	sc := bufio.NewScanner(in)
	for {
		fmt.Fprint(w, "> ")
		if err := w.Flush(); err != nil {
			return err
		}
		if !sc.Scan() {
			break
		}
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if strings.EqualFold(line, "bye") {
			break
		}
		reply(d.Dispatch(line))
	}
	if err := sc.Err(); err != nil {
		return err
	}
	fmt.Fprintln(w)
	reply(ui.Farewell)
	return w.Flush()
}
