package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"sync"

	"stowaway/internal/upload"
)

// promptResolver asks on out and reads the answer from in. End of input
// counts as cancel.
type promptResolver struct {
	mu     sync.Mutex
	reader *bufio.Reader
	out    io.Writer
	sticky *upload.Decision
}

func newPromptResolver(in io.Reader, out io.Writer) *promptResolver {
	return &promptResolver{reader: bufio.NewReader(in), out: out}
}

func (p *promptResolver) Decide(name string) upload.Decision {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.sticky != nil {
		return *p.sticky
	}
	for {
		fmt.Fprintf(p.out, "\n%s already exists on the server. [o]verwrite, [s]kip, overwrite [a]ll, skip al[l], [c]ancel? ", name)
		line, err := p.reader.ReadString('\n')
		answer := strings.ToLower(strings.TrimSpace(line))
		if answer == "" && err != nil {
			return upload.CancelAll
		}
		switch answer {
		case "o", "overwrite", "y", "yes":
			return upload.Overwrite
		case "s", "skip", "n", "no":
			return upload.Skip
		case "a", "all":
			p.remember(upload.Overwrite)
			return upload.Overwrite
		case "l", "skip all":
			p.remember(upload.Skip)
			return upload.Skip
		case "c", "cancel":
			return upload.CancelAll
		}
		if err != nil {
			return upload.CancelAll
		}
	}
}

func (p *promptResolver) remember(d upload.Decision) {
	p.sticky = &d
}
