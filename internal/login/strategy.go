package login

import (
	"context"
	"time"

	"github.com/Bangnus/Check-Unfollows-IG/internal/browser"
)

// UsernameSelectors are tried in order; Instagram rotates the login form markup
// and localizes the aria-label.
var UsernameSelectors = []string{
	`input[name="username"]`,
	`input[aria-label="Phone number, username, or email"]`,
	`input[aria-label="หมายเลขโทรศัพท์ ชื่อผู้ใช้ หรืออีเมล"]`,
	`input[aria-label="Teléfono, usuario o correo electrónico"]`,
	`input[aria-label="Telefone, nome de usuário ou email"]`,
	`input[type="text"]`,
	`input[type="email"]`,
	`input[type="tel"]`,
	`label input`,
	`#loginForm input`,
}

// FirstMatch returns the first selector that becomes visible within perCandidate.
// Later candidates are not tried once one matches.
func FirstMatch(ctx context.Context, page browser.Page, selectors []string, perCandidate time.Duration) (string, bool) {
	for _, sel := range selectors {
		if ctx.Err() != nil {
			return "", false
		}
		if page.WaitVisible(ctx, sel, perCandidate) {
			return sel, true
		}
	}
	return "", false
}
