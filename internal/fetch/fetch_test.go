package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestURL_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, DefaultUserAgent, r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("<html><body><h1>Wines</h1></body></html>"))
	}))
	defer server.Close()

	result, err := URL(context.Background(), server.URL, nil)
	require.NoError(t, err)
	assert.Equal(t, server.URL, result.URL)
	assert.Contains(t, result.HTML, "<h1>Wines</h1>")
	assert.Equal(t, http.StatusOK, result.StatusCode)
	assert.False(t, result.IsPDF())
}

func TestURL_InvalidURL(t *testing.T) {
	_, err := URL(context.Background(), "not-a-valid-url", nil)
	require.Error(t, err)

	var fetchErr *Error
	assert.ErrorAs(t, err, &fetchErr)
	assert.Contains(t, err.Error(), "invalid URL")
}

func TestURL_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	result, err := URL(context.Background(), server.URL, nil)
	require.Error(t, err)
	assert.NotNil(t, result) // Result is returned even on error
	assert.Equal(t, http.StatusNotFound, result.StatusCode)

	var fetchErr *Error
	assert.ErrorAs(t, err, &fetchErr)
	assert.Contains(t, err.Error(), "404")
}

func TestResult_IsPDF(t *testing.T) {
	assert.True(t, (&Result{URL: "https://x.com/wine.PDF"}).IsPDF())
	assert.True(t, (&Result{URL: "https://x.com/list", ContentType: "application/pdf"}).IsPDF())
	assert.False(t, (&Result{URL: "https://x.com/list", ContentType: "text/html"}).IsPDF())
}

func TestExtractMainText_KeepsMenuLines(t *testing.T) {
	html := `
	<html>
		<body>
			<nav>Reservations</nav>
			<div class="menu">
				<h2>Wines by the Glass</h2>
				<ul>
					<li>Cakebread Chardonnay <span class="price">$18</span></li>
					<li>Ridge   Geyserville&nbsp;2021 <em>$95</em></li>
				</ul>
			</div>
			<footer>Copyright</footer>
		</body>
	</html>`

	text, err := ExtractMainText(html, MenuSelectors())
	require.NoError(t, err)
	assert.Equal(t, "Wines by the Glass\nCakebread Chardonnay $18\nRidge Geyserville 2021 $95", text)
}

func TestExtractMainText_FallbackToBody(t *testing.T) {
	html := `<html><body><p>Line one</p><p>Line two</p><script>var x = 1;</script></body></html>`

	text, err := ExtractMainText(html, []string{".does-not-exist"})
	require.NoError(t, err)
	assert.Equal(t, "Line one\nLine two", text)
}

func TestExtractMainText_NoiseSelectors(t *testing.T) {
	html := `<html><body><main><p>Barolo $120</p><div class="newsletter">Sign up</div></main></body></html>`

	text, err := ExtractMainText(html, DefaultTextSelectors(), ".newsletter")
	require.NoError(t, err)
	assert.Equal(t, "Barolo $120", text)
}

func TestExtractMainText_TableRows(t *testing.T) {
	html := `<main><table>
		<tr><td>Sancerre</td><td>16</td><td>64</td></tr>
		<tr><td>Chablis</td><td>18</td><td>72</td></tr>
	</table></main>`

	text, err := ExtractMainText(html, DefaultTextSelectors())
	require.NoError(t, err)
	assert.Equal(t, "Sancerre\n16\n64\nChablis\n18\n72", text)
}

func TestCleanWhitespace(t *testing.T) {
	assert.Equal(t, "a b\nc", cleanWhitespace("  a \t b \n\n   \n c  "))
	assert.Equal(t, "", cleanWhitespace("\n \n"))
}
