package api

import (
	"io"
	"net/http"
)

const welcomeHTML = `<!DOCTYPE html>
<html>
<head><title>scribe-relay</title></head>
<body>
  <h1>scribe-relay</h1>
  <p>Audio transcription relay. POST an <code>audio</code> multipart field to <code>/transcribe</code>.</p>
  <ul>
    <li><code>POST /transcribe</code> &mdash; transcribe an audio file</li>
    <li><code>GET /transcriptions</code> &mdash; list stored transcriptions</li>
    <li><code>DELETE /transcriptions/{id}</code> &mdash; delete one transcription</li>
    <li><code>DELETE /transcriptions</code> &mdash; delete all transcriptions</li>
  </ul>
</body>
</html>
`

// Welcome serves the HTML banner on the root path.
func Welcome(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	io.WriteString(w, welcomeHTML)
}
