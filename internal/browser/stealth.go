package browser

import (
	"github.com/go-rod/rod"
	"github.com/go-rod/stealth"
)

// StealthScript masks the fingerprinting signals Instagram's login page probes:
// navigator.webdriver, an empty plugin list and missing languages.
// go-rod/stealth covers the broader evasion set; this pins the values we rely on.
const StealthScript = `
(function() {
    'use strict';

    Object.defineProperty(navigator, 'webdriver', {
        get: () => false,
        configurable: true
    });

    try {
        const fakePlugins = [
            { name: 'Chrome PDF Plugin', filename: 'internal-pdf-viewer', description: 'Portable Document Format' },
            { name: 'Chrome PDF Viewer', filename: 'mhjfbmdgcfjbbpaeojofohoefgiehjai', description: '' },
            { name: 'Native Client', filename: 'internal-nacl-plugin', description: '' }
        ];
        const plugins = Object.create(PluginArray.prototype);
        fakePlugins.forEach((p, i) => {
            const plugin = Object.create(Plugin.prototype);
            Object.defineProperties(plugin, {
                name: { value: p.name, enumerable: true },
                filename: { value: p.filename, enumerable: true },
                description: { value: p.description, enumerable: true },
                length: { value: 1, enumerable: true }
            });
            plugins[i] = plugin;
            plugins[p.name] = plugin;
        });
        Object.defineProperty(plugins, 'length', { value: fakePlugins.length });
        Object.defineProperty(plugins, 'item', { value: (i) => plugins[i] || null });
        Object.defineProperty(plugins, 'namedItem', { value: (n) => plugins[n] || null });
        Object.defineProperty(plugins, 'refresh', { value: () => {} });
        Object.defineProperty(navigator, 'plugins', {
            get: () => plugins,
            configurable: true
        });
    } catch (e) {}

    Object.defineProperty(navigator, 'languages', {
        get: () => Object.freeze(['en-US', 'en']),
        configurable: true
    });

    if (!window.chrome) {
        Object.defineProperty(window, 'chrome', {
            value: { runtime: {} },
            writable: true,
            enumerable: true,
            configurable: false
        });
    }

    if (!navigator.hardwareConcurrency) {
        Object.defineProperty(navigator, 'hardwareConcurrency', {
            get: () => 4,
            configurable: true
        });
    }
})();
`

// CreateStealthPage creates a new page with stealth patches applied.
// This uses go-rod/stealth which embeds puppeteer-extra-plugin-stealth evasions.
func CreateStealthPage(browser *rod.Browser) (*rod.Page, error) {
	page, err := stealth.Page(browser)
	if err != nil {
		return nil, err
	}

	if _, err := page.EvalOnNewDocument(StealthScript); err != nil {
		_ = page.Close()
		return nil, err
	}

	return page, nil
}
