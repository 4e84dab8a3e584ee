package visits

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const DefaultTargetID = "visitors"

type DisplayTarget interface {
	Render(text string) error
}

// ElementNotFoundError reports a page without the element the count is
// rendered into.
type ElementNotFoundError struct {
	ID string
}

func (e *ElementNotFoundError) Error() string {
	return fmt.Sprintf("no element with id %q", e.ID)
}

// VoidElementError reports a target element that cannot hold content, such
// as <input> or <img>.
type VoidElementError struct {
	ID  string
	Tag string
}

func (e *VoidElementError) Error() string {
	return fmt.Sprintf("element with id %q is a void <%s> element", e.ID, e.Tag)
}

var voidElements = map[atom.Atom]bool{
	atom.Area:   true,
	atom.Base:   true,
	atom.Br:     true,
	atom.Col:    true,
	atom.Embed:  true,
	atom.Hr:     true,
	atom.Img:    true,
	atom.Input:  true,
	atom.Keygen: true,
	atom.Link:   true,
	atom.Meta:   true,
	atom.Param:  true,
	atom.Source: true,
	atom.Track:  true,
	atom.Wbr:    true,
}

// Document is a parsed HTML page whose element with the target id receives
// the rendered text.
type Document struct {
	mutex sync.Mutex
	root  *html.Node
	id    string
}

func ParseDocument(r io.Reader, id string) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse page")
	}

	if id == "" {
		id = DefaultTargetID
	}

	return &Document{root: root, id: id}, nil
}

// Render replaces the content of the target element with text. The page is
// left untouched when the target is missing or void.
func (d *Document) Render(text string) error {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	element := findByID(d.root, d.id)
	if element == nil {
		return &ElementNotFoundError{ID: d.id}
	}
	if voidElements[element.DataAtom] {
		return &VoidElementError{ID: d.id, Tag: element.Data}
	}

	for child := element.FirstChild; child != nil; child = element.FirstChild {
		element.RemoveChild(child)
	}
	element.AppendChild(&html.Node{Type: html.TextNode, Data: text})

	return nil
}

// Content returns the text currently held by the target element.
func (d *Document) Content() (string, error) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	element := findByID(d.root, d.id)
	if element == nil {
		return "", &ElementNotFoundError{ID: d.id}
	}

	var content bytes.Buffer
	for child := element.FirstChild; child != nil; child = child.NextSibling {
		collectText(&content, child)
	}

	return content.String(), nil
}

func (d *Document) WriteTo(w io.Writer) (int64, error) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	var buffer bytes.Buffer
	if err := html.Render(&buffer, d.root); err != nil {
		return 0, errors.Wrap(err, "failed to render page")
	}

	return buffer.WriteTo(w)
}

func (d *Document) Bytes() ([]byte, error) {
	var buffer bytes.Buffer
	if _, err := d.WriteTo(&buffer); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

func findByID(node *html.Node, id string) *html.Node {
	if node.Type == html.ElementNode {
		for _, attr := range node.Attr {
			if attr.Namespace == "" && attr.Key == "id" && attr.Val == id {
				return node
			}
		}
	}

	for child := node.FirstChild; child != nil; child = child.NextSibling {
		if found := findByID(child, id); found != nil {
			return found
		}
	}

	return nil
}

func collectText(w *bytes.Buffer, node *html.Node) {
	if node.Type == html.TextNode {
		w.WriteString(node.Data)
		return
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		collectText(w, child)
	}
}

// TextTarget keeps the last rendered text in memory.
type TextTarget struct {
	mutex sync.RWMutex
	text  string
}

func (t *TextTarget) Render(text string) error {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	t.text = text
	return nil
}

func (t *TextTarget) Text() string {
	t.mutex.RLock()
	defer t.mutex.RUnlock()

	return t.text
}
