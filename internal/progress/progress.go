package progress

import (
	"io"

	"github.com/schollz/progressbar/v3"
)

// Bar is a progress bar for interactive runs. The zero value and nil are
// inert, so callers never need to branch on quiet mode.
type Bar struct {
	bar *progressbar.ProgressBar
}

// New returns a progress bar rendering to w with the given description and
// step count. Pass max < 0 for a spinner.
func New(w io.Writer, description string, max int) *Bar {
	return &Bar{
		bar: progressbar.NewOptions(max,
			progressbar.OptionSetWriter(w),
			progressbar.OptionSetDescription(description),
			progressbar.OptionClearOnFinish(),
			progressbar.OptionShowCount(),
		),
	}
}

func (b *Bar) Add(n int) {
	if b == nil || b.bar == nil {
		return
	}
	_ = b.bar.Add(n)
}

func (b *Bar) Finish() {
	if b == nil || b.bar == nil {
		return
	}
	_ = b.bar.Finish()
}
