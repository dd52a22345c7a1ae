package scraper

import (
	"context"
	"time"

	"github.com/Bangnus/Check-Unfollows-IG/internal/browser"
)

// Row is one account link read from the dialog.
type Row struct {
	Href       string `json:"href"`
	FullName   string `json:"fullName,omitempty"`
	ProfilePic string `json:"profilePic,omitempty"`
}

// Dialog is an open following/followers dialog.
type Dialog interface {
	// WaitForRows waits up to timeout for at least one account link.
	WaitForRows(ctx context.Context, timeout time.Duration) bool
	// Rows reads every account link currently rendered.
	Rows(ctx context.Context, rich bool) ([]Row, error)
	// Scroll scrolls the list programmatically and reports whether it grew.
	Scroll(ctx context.Context) (bool, error)
	// Wheel scrolls with the mouse wheel at the dialog centre.
	Wheel(ctx context.Context) error
	// Close dismisses the dialog, best effort.
	Close(ctx context.Context)
}

// domDialog implements Dialog with in-page scripts.
type domDialog struct {
	page browser.Page
}

// newDOMDialog marks the scroll container of the open dialog.
func newDOMDialog(ctx context.Context, page browser.Page) (*domDialog, bool) {
	var marked bool
	if err := page.Eval(ctx, markScrollTargetJS, &marked, scrollTargetName); err != nil {
		marked = false
	}
	return &domDialog{page: page}, marked
}

func (d *domDialog) WaitForRows(ctx context.Context, timeout time.Duration) bool {
	return d.page.WaitVisible(ctx, dialogLinks, timeout)
}

func (d *domDialog) Rows(ctx context.Context, rich bool) ([]Row, error) {
	var rows []Row
	if err := d.page.Eval(ctx, rowsJS, &rows, rich); err != nil {
		return nil, err
	}
	return rows, nil
}

func (d *domDialog) Scroll(ctx context.Context) (bool, error) {
	var grew bool
	err := d.page.Eval(ctx, scrollJS, &grew, scrollTargetName, scrollStepPixels)
	return grew, err
}

func (d *domDialog) Wheel(ctx context.Context) error {
	var centre struct {
		OK bool    `json:"ok"`
		X  float64 `json:"x"`
		Y  float64 `json:"y"`
	}
	if err := d.page.Eval(ctx, dialogCenterJS, &centre); err != nil {
		return err
	}
	if !centre.OK {
		return nil
	}
	return d.page.Wheel(ctx, centre.X, centre.Y, wheelStepPixels)
}

func (d *domDialog) Close(ctx context.Context) {
	var closed bool
	_ = d.page.Eval(ctx, closeDialogJS, &closed)
}
