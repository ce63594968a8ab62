package cli

import (
	"fmt"
	"github.com/gaussfff/momitroll/migration"
	"github.com/logrusorgru/aurora/v3"
	"io"
)

const (
	AppName    = "momitroll"
	Repository = "https://github.com/gaussfff/momitroll"
)

// Version is overridden at build time with -ldflags "-X ..."
var Version = "0.1.0"

var logo = []string{
	`___ ___   ___   ___ ___  ____  ______  ____   ___   *      *     `,
	`|   |   | /   \ |   |   ||    ||      ||    \ /   \ | |    | |    `,
	`| *   * ||     || *   * | |  | |      ||  D  )     || |    | |    `,
	`|  \_/  ||  O  ||  \_/  | |  | |_|  |_||    /|  O  || |___ | |___ `,
	`|   |   ||     ||   |   | |  |   |  |  |    \|     ||     ||     |`,
	`|   |   ||     ||   |   | |  |   |  |  |  .  \     ||     ||     |`,
	`|___|___| \___/ |___|___||____|  |__|  |__|\_|\___/ |_____||_____|`,
}

type Printer struct {
	w  io.Writer
	au aurora.Aurora
}

func NewPrinter(w io.Writer, colors bool) *Printer {
	return &Printer{w: w, au: aurora.NewAurora(colors)}
}

// Status prints one line per record
func (p *Printer) Status(records migration.Records) {
	for _, r := range records {
		date := p.au.Red("<not applied>")
		if r.AppliedAt != nil {
			date = p.au.Green(r.AppliedAt.UTC().Format("2006-01-02 15:04:05.000 MST"))
		}

		status := p.au.Yellow(r.Status)
		if r.IsApplied() {
			status = p.au.Green(r.Status)
		}

		fmt.Fprintf(
			p.w,
			"name: %s, applied at: %s, status: %s, description: %s\n",
			p.au.Blue(r.Name),
			date,
			status,
			p.au.Cyan(r.DescriptionOr("<empty>")),
		)
	}
}

func (p *Printer) Info() {
	for _, line := range logo {
		fmt.Fprintln(p.w, p.au.Green(line))
	}

	fmt.Fprintf(p.w, "Repository: %s\nv. %s\n", p.au.Magenta(Repository), p.au.Red(Version))
}

func (p *Printer) Version() {
	fmt.Fprintf(p.w, "%s %s%s\n", p.au.Blue(AppName), p.au.Blue("v."), p.au.Red(Version))
}
