package browser

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// StaticSession serves pre-rendered HTML keyed by URL. It backs --replay
// runs over recorded pages and the scraper tests.
type StaticSession struct {
	pages        map[string]string
	current      string
	doc          *goquery.Document
	gen          Generation
	pollInterval time.Duration
}

func NewStaticSession(pages map[string]string) *StaticSession {
	return &StaticSession{pages: pages, pollInterval: 10 * time.Millisecond}
}

// SetPollInterval changes how often WaitUntil re-checks its condition.
func (s *StaticSession) SetPollInterval(d time.Duration) {
	s.pollInterval = d
}

func (s *StaticSession) lookup(rawURL string) (string, bool) {
	if body, ok := s.pages[rawURL]; ok {
		return body, true
	}
	alt := rawURL + "/"
	if strings.HasSuffix(rawURL, "/") {
		alt = strings.TrimSuffix(rawURL, "/")
	}
	body, ok := s.pages[alt]
	return body, ok
}

func (s *StaticSession) Navigate(ctx context.Context, rawURL, marker string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	body, ok := s.lookup(rawURL)
	if !ok {
		return fmt.Errorf("navigate to %s: no recorded page", rawURL)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return fmt.Errorf("parse %s: %w", rawURL, err)
	}

	s.doc = doc
	s.current = rawURL
	s.gen.Advance()

	if marker != "" && doc.Find(marker).Length() == 0 {
		return fmt.Errorf("%w: %q not present on %s", ErrTimeout, marker, rawURL)
	}
	return nil
}

func (s *StaticSession) FindAll(selector string) ([]Element, error) {
	if s.doc == nil {
		return nil, fmt.Errorf("query %q: no page loaded", selector)
	}
	return s.wrap(s.doc.Find(selector)), nil
}

func (s *StaticSession) wrap(sel *goquery.Selection) []Element {
	out := make([]Element, 0, sel.Length())
	sel.Each(func(_ int, one *goquery.Selection) {
		out = append(out, &staticElement{sel: one, doc: s.doc, session: s, scope: s.gen.scope()})
	})
	return out
}

// Click follows the element's href. Elements without a usable link do
// nothing, like a dead button.
func (s *StaticSession) Click(ctx context.Context, el Element) error {
	se, ok := el.(*staticElement)
	if !ok || se.session != s {
		return fmt.Errorf("element %T does not belong to this session", el)
	}
	if err := se.scope.check(); err != nil {
		return err
	}

	href, ok := se.sel.Attr("href")
	href = strings.TrimSpace(href)
	if !ok || href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(strings.ToLower(href), "javascript:") {
		return nil
	}

	target, err := s.resolve(href)
	if err != nil {
		return err
	}
	return s.Navigate(ctx, target, "")
}

func (s *StaticSession) resolve(href string) (string, error) {
	ref, err := url.Parse(href)
	if err != nil {
		return "", fmt.Errorf("bad link %q: %w", href, err)
	}
	base, err := url.Parse(s.current)
	if err != nil {
		return "", fmt.Errorf("bad current url %q: %w", s.current, err)
	}
	return base.ResolveReference(ref).String(), nil
}

func (s *StaticSession) WaitUntil(ctx context.Context, cond Condition, timeout time.Duration) error {
	return Poll(ctx, cond, timeout, s.pollInterval)
}

func (s *StaticSession) Invalidate()        { s.gen.Advance() }
func (s *StaticSession) Generation() uint64 { return s.gen.Current() }
func (s *StaticSession) URL() string        { return s.current }

func (s *StaticSession) Content() (string, error) {
	if s.doc == nil {
		return "", fmt.Errorf("no page loaded")
	}
	return goquery.OuterHtml(s.doc.Selection)
}

func (s *StaticSession) Close() error { return nil }

type staticElement struct {
	sel     *goquery.Selection
	doc     *goquery.Document
	session *StaticSession
	scope   scope
}

func (e *staticElement) Text() (string, error) {
	if err := e.scope.check(); err != nil {
		return "", err
	}
	return VisibleText(e.sel.Nodes[0]), nil
}

func (e *staticElement) Attribute(name string) (string, bool, error) {
	if err := e.scope.check(); err != nil {
		return "", false, err
	}
	v, ok := e.sel.Attr(name)
	return v, ok, nil
}

func (e *staticElement) FindAll(selector string) ([]Element, error) {
	if err := e.scope.check(); err != nil {
		return nil, err
	}
	found := e.sel.Find(selector)
	out := make([]Element, 0, found.Length())
	found.Each(func(_ int, one *goquery.Selection) {
		out = append(out, &staticElement{sel: one, doc: e.doc, session: e.session, scope: e.scope})
	})
	return out, nil
}

func (e *staticElement) Closest(selector string) (Element, error) {
	if err := e.scope.check(); err != nil {
		return nil, err
	}
	ancestor := e.sel.Parent().Closest(selector)
	if ancestor.Length() == 0 {
		return nil, nil
	}
	return &staticElement{sel: ancestor.First(), doc: e.doc, session: e.session, scope: e.scope}, nil
}

func (e *staticElement) IsEnabled() (bool, error) {
	if err := e.scope.check(); err != nil {
		return false, err
	}
	_, disabled := e.sel.Attr("disabled")
	return !disabled, nil
}

func (e *staticElement) Detached() bool {
	return e.doc != e.session.doc
}
