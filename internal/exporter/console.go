package exporter

import (
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"

	"github.com/vietddude/balancewatch/internal/core/domain"
)

// Console prints one line per result.
type Console struct {
	mu   sync.Mutex
	w    io.Writer
	name *color.Color
	ok   *color.Color
	fail *color.Color
}

// NewConsole writes to w. With colored false the output is plain text.
func NewConsole(w io.Writer, colored bool) *Console {
	c := &Console{
		w:    w,
		name: color.New(color.FgCyan),
		ok:   color.New(color.FgGreen),
		fail: color.New(color.FgRed),
	}
	if !colored {
		c.name.DisableColor()
		c.ok.DisableColor()
		c.fail.DisableColor()
	}
	return c
}

// Observe prints r.
func (c *Console) Observe(r domain.Result) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !r.OK() {
		fmt.Fprintf(c.w, "failed to get balance for address %s on network %s token %s: %s\n",
			c.name.Sprint(r.AddressName), r.Network, r.Asset, c.fail.Sprint(r.Err))
		return
	}
	fmt.Fprintf(c.w, "address %s on network %s token %s balance is %s\n",
		c.name.Sprint(r.AddressName), r.Network, r.Asset, c.ok.Sprint(r.Balance.Dec()))
}
