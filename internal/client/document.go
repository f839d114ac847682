package client

import (
	"encoding/json"
	"html"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
)

const (
	contentRegionSelector = "article, .entry-content, .post-content"
	toggleSelector        = "#format-toggle-btn"

	labelConvert = "Convert to AP Format"
	labelRevert  = "Revert to Original"
	iconConvert  = "📰"
	iconRevert   = "📄"
)

// DocumentView is a headless model of the article page, backed by goquery.
type DocumentView struct {
	mu       sync.Mutex
	doc      *goquery.Document
	region   *goquery.Selection
	scrolled bool
}

var _ View = (*DocumentView)(nil)

// NewDocumentView parses the article page; without a content region the body is used.
func NewDocumentView(r io.Reader) (*DocumentView, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}
	region := doc.Find(contentRegionSelector).First()
	if region.Length() == 0 {
		region = doc.Find("body")
	}
	return &DocumentView{doc: doc, region: region}, nil
}

// ArticleID reads data-post-id from the toggle button.
func (d *DocumentView) ArticleID() (int64, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	raw, ok := d.doc.Find(toggleSelector).Attr("data-post-id")
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	return id, err == nil
}

// Token reads the request token embedded in the page.
func (d *DocumentView) Token() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.doc.Find(toggleSelector).AttrOr("data-token", "")
}

// OriginalContent decodes the #original-content snapshot, falling back to the region markup.
func (d *DocumentView) OriginalContent() string {
	d.mu.Lock()
	defer d.mu.Unlock()

	if script := d.doc.Find("#original-content"); script.Length() > 0 {
		var content string
		if err := json.Unmarshal([]byte(script.Text()), &content); err == nil {
			return content
		}
	}
	content, _ := d.region.Html()
	return content
}

// Content returns the markup currently shown in the content region.
func (d *DocumentView) Content() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	content, _ := d.region.Html()
	return content
}

func (d *DocumentView) SetContent(content string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.region.SetHtml(content)
}

func (d *DocumentView) ScrollToContent() {
	d.mu.Lock()
	d.scrolled = true
	d.mu.Unlock()
}

// Scrolled reports whether the content region has been brought into view.
func (d *DocumentView) Scrolled() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.scrolled
}

func (d *DocumentView) ShowLoading() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.doc.Find("#format-loading").RemoveAttr("hidden")
	d.doc.Find(toggleSelector).SetAttr("disabled", "disabled")
}

func (d *DocumentView) SetLoadingText(text string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.doc.Find("#loading-text").SetText(text)
}

// LoadingText returns the message currently shown in the loading indicator.
func (d *DocumentView) LoadingText() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.doc.Find("#loading-text").Text()
}

func (d *DocumentView) HideLoading() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.doc.Find("#format-loading").SetAttr("hidden", "")
	d.doc.Find(toggleSelector).RemoveAttr("disabled")
}

func (d *DocumentView) ShowError(message string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.doc.Find("#format-error").RemoveAttr("hidden")
	d.doc.Find("#format-error p").SetHtml("❌ " + html.EscapeString(message) + ` <a href="#" id="retry-conversion">Try again</a>`)
	d.doc.Find(toggleSelector).RemoveAttr("disabled")
}

// ErrorText returns the visible error message without the retry link.
func (d *DocumentView) ErrorText() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	box := d.doc.Find("#format-error")
	if _, hidden := box.Attr("hidden"); hidden {
		return ""
	}
	p := box.Find("p").Clone()
	p.Find("#retry-conversion").Remove()
	return strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(p.Text()), "❌"))
}

func (d *DocumentView) HideError() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.doc.Find("#format-error").SetAttr("hidden", "")
}

func (d *DocumentView) SetConverted(converted bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	btn := d.doc.Find(toggleSelector)
	if converted {
		btn.AddClass("converted")
		btn.Find(".toggle-icon").SetText(iconRevert)
		btn.Find(".toggle-text").SetText(labelRevert)
		return
	}
	btn.RemoveClass("converted")
	btn.Find(".toggle-icon").SetText(iconConvert)
	btn.Find(".toggle-text").SetText(labelConvert)
}

// ToggleLabel returns the visible button label.
func (d *DocumentView) ToggleLabel() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return strings.TrimSpace(d.doc.Find(toggleSelector + " .toggle-text").Text())
}

// HTML serializes the whole page.
func (d *DocumentView) HTML() (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return goquery.OuterHtml(d.doc.Selection)
}
