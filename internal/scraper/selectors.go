package scraper

// DOM knowledge of the profile page and the relationship dialog lives here.

const (
	dialogSelector   = `div[role="dialog"]`
	dialogLinks      = `div[role="dialog"] a[role="link"]`
	scrollTargetName = "custom-scroll-target"
	profileURLFormat = "https://www.instagram.com/%s/"
	listLinkFormat   = `a[href*="/%s"]`
	scrollStepPixels = 1500
	wheelStepPixels  = 1000
)

// Usernames that appear as dialog links but are not accounts.
var nonUserPaths = map[string]struct{}{
	"explore": {},
	"reels":   {},
}

// markScrollTargetJS tags the dialog's scrollable list so later scrolls reuse it.
// Falls back to the parent of the first sized list.
const markScrollTargetJS = `(name) => {
	const dialog = document.querySelector('div[role="dialog"]');
	if (!dialog) return false;
	const scrollable = Array.from(dialog.querySelectorAll('div')).find((el) => {
		const style = window.getComputedStyle(el);
		return style.overflowY === 'auto' || style.overflowY === 'scroll';
	});
	if (scrollable) {
		scrollable.classList.add(name);
		return true;
	}
	const list = dialog.querySelector('div[style*="height"]');
	if (list && list.parentElement) {
		list.parentElement.classList.add(name);
		return true;
	}
	return false;
}`

// rowsJS returns the href of every account link in the dialog, and with rich set
// the row's display name and avatar.
const rowsJS = `(rich) => {
	const rows = [];
	document.querySelectorAll('div[role="dialog"] a[role="link"]').forEach((link) => {
		const href = link.getAttribute('href');
		if (!href) return;
		const row = { href: href };
		if (rich) {
			const scope = link.closest('div') || link;
			const span = link.querySelector('span') || scope.querySelector('span');
			const img = link.querySelector('img') || scope.querySelector('img');
			row.fullName = span && span.textContent ? span.textContent.trim() : '';
			row.profilePic = img ? (img.getAttribute('src') || '') : '';
		}
		rows.push(row);
	});
	return rows;
}`

// scrollJS scrolls the marked container (or the tallest dialog div) and polls
// up to 15x100ms for scrollHeight to grow.
const scrollJS = `async (name, step) => {
	let container = document.querySelector('.' + name);
	if (!container) {
		const dialog = document.querySelector('div[role="dialog"]');
		if (dialog) {
			const divs = Array.from(dialog.querySelectorAll('div'));
			container = divs.reduce((max, cur) => (cur.scrollHeight > max.scrollHeight ? cur : max), divs[0]);
		}
	}
	if (!container) return false;

	const before = container.scrollHeight;
	container.scrollBy(0, step);
	for (let i = 0; i < 15 && container.scrollHeight === before; i++) {
		await new Promise((resolve) => setTimeout(resolve, 100));
	}
	return container.scrollHeight > before;
}`

// dialogCenterJS returns the viewport centre of the dialog.
const dialogCenterJS = `() => {
	const dialog = document.querySelector('div[role="dialog"]');
	if (!dialog) return { ok: false, x: 0, y: 0 };
	const box = dialog.getBoundingClientRect();
	return { ok: true, x: box.x + box.width / 2, y: box.y + box.height / 2 };
}`

// closeDialogJS clicks the dialog's close control, or any dialog button.
const closeDialogJS = `() => {
	const dialog = 'div[role="dialog"]';
	const svg = document.querySelector(dialog + ' svg[aria-label="Close"]');
	const btn = document.querySelector(dialog + ' button[aria-label="Close"]') ||
		(svg && svg.closest('button')) ||
		document.querySelector(dialog + ' button');
	if (!btn) return false;
	btn.click();
	return true;
}`
