package visits

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

const page = `<!DOCTYPE html>
<html>
<head><title>home</title></head>
<body>
<footer><p>Seen by <span id="visitors">loading...</span></p></footer>
</body>
</html>`

func TestDocument(t *testing.T) {
	t.Run("renders into the target element", func(t *testing.T) {
		document, err := ParseDocument(strings.NewReader(page), "")
		if !assert.Nil(t, err) {
			return
		}

		assert.Nil(t, document.Render("42 visits"))

		content, err := document.Content()
		assert.Nil(t, err)
		assert.Equal(t, "42 visits", content)

		rendered, err := document.Bytes()
		assert.Nil(t, err)
		assert.Contains(t, string(rendered), `<span id="visitors">42 visits</span>`)
		assert.Contains(t, string(rendered), "<title>home</title>")
	})

	t.Run("replaces nested content", func(t *testing.T) {
		document, err := ParseDocument(strings.NewReader(`<div id="visitors"><b>old</b> text</div>`), "visitors")
		if !assert.Nil(t, err) {
			return
		}

		assert.Nil(t, document.Render("3 visits"))

		content, _ := document.Content()
		assert.Equal(t, "3 visits", content)
	})

	t.Run("escapes rendered text", func(t *testing.T) {
		document, _ := ParseDocument(strings.NewReader(page), "")

		assert.Nil(t, document.Render("<script>"))

		rendered, _ := document.Bytes()
		assert.Contains(t, string(rendered), "&lt;script&gt;")
	})

	t.Run("is idempotent", func(t *testing.T) {
		document, _ := ParseDocument(strings.NewReader(page), "")

		assert.Nil(t, document.Render("42 visits"))
		first, _ := document.Bytes()
		assert.Nil(t, document.Render("42 visits"))
		second, _ := document.Bytes()

		assert.Equal(t, string(first), string(second))
	})

	t.Run("fails without the target element", func(t *testing.T) {
		document, _ := ParseDocument(strings.NewReader(page), "counter")

		err := document.Render("1 visits")

		_, ok := err.(*ElementNotFoundError)
		assert.True(t, ok)
	})

	t.Run("leaves a void target untouched", func(t *testing.T) {
		document, _ := ParseDocument(strings.NewReader(`<p>Seen by <input id="visitors" value="0"></p>`), "")

		err := document.Render("1 visits")

		var void *VoidElementError
		if assert.ErrorAs(t, err, &void) {
			assert.Equal(t, "input", void.Tag)
		}

		rendered, err := document.Bytes()
		assert.Nil(t, err)
		assert.Contains(t, string(rendered), `<input id="visitors" value="0"/>`)
	})
}

func TestTextTarget(t *testing.T) {
	target := &TextTarget{}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = target.Render("5 visits")
		}()
	}
	wg.Wait()

	assert.Equal(t, "5 visits", target.Text())
}
