package browser

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Wilfredoo/crew-scraper/internal/config"
	"github.com/Wilfredoo/crew-scraper/utils"

	"github.com/playwright-community/playwright-go"
	"github.com/rs/zerolog/log"
)

const navigationTimeout = 30 * time.Second

type PlaywrightManager struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	cfg     config.BrowserConfig
}

// NewPlaywright starts the driver and launches Chromium with the stealth flags.
func NewPlaywright(ctx context.Context, cfg config.BrowserConfig) (*PlaywrightManager, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	log.Info().Bool("headless", cfg.Headless).Msg("🔧 Setting up Chromium...")
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("could not start playwright: %w", err)
	}

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(cfg.Headless),
		Args:     LaunchArgs,
	})
	if err != nil {
		_ = pw.Stop()
		return nil, fmt.Errorf("could not launch chromium: %w", err)
	}

	return &PlaywrightManager{pw: pw, browser: browser, cfg: cfg}, nil
}

// NewContext creates an isolated browser context with the stealth user agent,
// the webdriver-hiding init script and the given cookies.
func (pm *PlaywrightManager) NewContext(cookies []playwright.OptionalCookie) (playwright.BrowserContext, error) {
	userAgent := pm.cfg.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	browserCtx, err := pm.browser.NewContext(playwright.BrowserNewContextOptions{
		UserAgent: playwright.String(userAgent),
		Locale:    playwright.String("en-US"),
		Viewport:  &playwright.Size{Width: 1366, Height: 768},
	})
	if err != nil {
		return nil, fmt.Errorf("could not create browser context: %w", err)
	}

	if err := browserCtx.AddInitScript(playwright.Script{
		Content: playwright.String(webdriverInitScript),
	}); err != nil {
		browserCtx.Close()
		return nil, fmt.Errorf("could not add init script: %w", err)
	}

	if len(cookies) > 0 {
		if err := browserCtx.AddCookies(cookies); err != nil {
			browserCtx.Close()
			return nil, fmt.Errorf("could not add cookies: %w", err)
		}
	}
	return browserCtx, nil
}

// NewSession opens a page in a fresh context and wraps it as a Session.
func (pm *PlaywrightManager) NewSession(cookies []playwright.OptionalCookie, screenshotDir string) (*PlaywrightSession, error) {
	browserCtx, err := pm.NewContext(cookies)
	if err != nil {
		return nil, err
	}
	page, err := browserCtx.NewPage()
	if err != nil {
		browserCtx.Close()
		return nil, fmt.Errorf("could not create page: %w", err)
	}
	log.Info().Msg("✅ Chromium session created")
	return NewPlaywrightSession(page, pm.cfg, utils.NewScreenShotDebugger(screenshotDir)), nil
}

// CloseAfter keeps the browser open for delay so the page can be inspected,
// then shuts everything down.
func (pm *PlaywrightManager) CloseAfter(delay time.Duration) error {
	if delay > 0 {
		log.Info().Dur("delay", delay).Msg("⏰ Keeping browser open for inspection...")
		time.Sleep(delay)
	}
	return pm.Close()
}

func (pm *PlaywrightManager) Close() error {
	log.Info().Msg("🚪 Closing browser...")
	var firstErr error
	if pm.browser != nil {
		if err := pm.browser.Close(); err != nil {
			firstErr = fmt.Errorf("close browser: %w", err)
		}
	}
	if pm.pw != nil {
		if err := pm.pw.Stop(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("stop playwright: %w", err)
		}
	}
	return firstErr
}

// PlaywrightSession drives one live page.
type PlaywrightSession struct {
	page        playwright.Page
	gen         Generation
	cfg         config.BrowserConfig
	screenshots *utils.ScreenShotDebugger
}

func NewPlaywrightSession(page playwright.Page, cfg config.BrowserConfig, screenshots *utils.ScreenShotDebugger) *PlaywrightSession {
	return &PlaywrightSession{page: page, cfg: cfg, screenshots: screenshots}
}

func (s *PlaywrightSession) Navigate(ctx context.Context, url, marker string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	_, err := s.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(float64(navigationTimeout.Milliseconds())),
	})
	s.gen.Advance()
	if err != nil {
		return fmt.Errorf("navigate to %s: %w", url, err)
	}

	if marker == "" {
		marker = "body"
	}
	if _, err := s.page.WaitForSelector(marker, playwright.PageWaitForSelectorOptions{
		State:   playwright.WaitForSelectorStateAttached,
		Timeout: playwright.Float(float64(s.cfg.WaitTimeout.Milliseconds())),
	}); err != nil {
		return fmt.Errorf("%w: %q never appeared on %s: %v", ErrTimeout, marker, url, err)
	}

	if s.cfg.Humanize {
		RandomDelay(500, 1500)
		if err := HumanScroll(s.page); err != nil {
			log.Debug().Err(err).Msg("human scroll failed")
		}
	}
	return nil
}

func (s *PlaywrightSession) FindAll(selector string) ([]Element, error) {
	handles, err := s.page.QuerySelectorAll(selector)
	if err != nil {
		return nil, fmt.Errorf("query %q: %w", selector, err)
	}
	return s.wrap(handles), nil
}

func (s *PlaywrightSession) wrap(handles []playwright.ElementHandle) []Element {
	out := make([]Element, 0, len(handles))
	for _, h := range handles {
		out = append(out, &pwElement{h: h, scope: s.gen.scope(), session: s})
	}
	return out
}

func (s *PlaywrightSession) Click(ctx context.Context, el Element) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	pe, ok := el.(*pwElement)
	if !ok || pe.session != s {
		return fmt.Errorf("element %T does not belong to this session", el)
	}
	if err := pe.scope.check(); err != nil {
		return err
	}
	if s.cfg.Humanize {
		if err := MouseJiggle(s.page); err != nil {
			log.Debug().Err(err).Msg("mouse jiggle failed")
		}
	}
	return pe.h.Click()
}

func (s *PlaywrightSession) WaitUntil(ctx context.Context, cond Condition, timeout time.Duration) error {
	return Poll(ctx, cond, timeout, s.cfg.PollInterval)
}

func (s *PlaywrightSession) Invalidate()        { s.gen.Advance() }
func (s *PlaywrightSession) Generation() uint64 { return s.gen.Current() }
func (s *PlaywrightSession) URL() string        { return s.page.URL() }

func (s *PlaywrightSession) Content() (string, error) {
	return s.page.Content()
}

func (s *PlaywrightSession) Close() error {
	return s.page.Close()
}

func (s *PlaywrightSession) Screenshot(name, message string) error {
	if s.screenshots == nil {
		return nil
	}
	return s.screenshots.CaptureAndLog(s.page, name, message)
}

type pwElement struct {
	h       playwright.ElementHandle
	scope   scope
	session *PlaywrightSession
}

func (e *pwElement) Text() (string, error) {
	if err := e.scope.check(); err != nil {
		return "", err
	}
	text, err := e.h.InnerText()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

func (e *pwElement) Attribute(name string) (string, bool, error) {
	if err := e.scope.check(); err != nil {
		return "", false, err
	}
	//null when absent, "" when present without a value
	v, err := e.h.Evaluate(`(el, name) => el.getAttribute(name)`, name)
	if err != nil {
		return "", false, err
	}
	value, ok := v.(string)
	return value, ok, nil
}

func (e *pwElement) FindAll(selector string) ([]Element, error) {
	if err := e.scope.check(); err != nil {
		return nil, err
	}
	handles, err := e.h.QuerySelectorAll(selector)
	if err != nil {
		return nil, fmt.Errorf("query %q: %w", selector, err)
	}
	return e.session.wrap(handles), nil
}

func (e *pwElement) Closest(selector string) (Element, error) {
	if err := e.scope.check(); err != nil {
		return nil, err
	}
	jh, err := e.h.EvaluateHandle(`(el, sel) => el.parentElement ? el.parentElement.closest(sel) : null`, selector)
	if err != nil {
		return nil, fmt.Errorf("closest %q: %w", selector, err)
	}
	ancestor := jh.AsElement()
	if ancestor == nil {
		_ = jh.Dispose()
		return nil, nil
	}
	return &pwElement{h: ancestor, scope: e.scope, session: e.session}, nil
}

func (e *pwElement) IsEnabled() (bool, error) {
	if err := e.scope.check(); err != nil {
		return false, err
	}
	return e.h.IsEnabled()
}

func (e *pwElement) Detached() bool {
	v, err := e.h.Evaluate("el => el.isConnected")
	if err != nil {
		//the execution context is gone after a navigation
		return true
	}
	connected, _ := v.(bool)
	return !connected
}

// Route intercepts requests matching pattern, used to serve fixtures.
func (s *PlaywrightSession) Route(pattern string, handler func(playwright.Route)) error {
	return s.page.Route(pattern, handler)
}
