package export

import (
	"html/template"
	"os"
	"path/filepath"
	"time"
)

// pageTemplate mirrors the digest text into a minimal mobile-friendly
// static page, published next to the ICS feed.
var pageTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html lang="ja">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>福岡イベント情報 - {{.Date}}</title>
<style>
body { font-family: 'Hiragino Sans', 'Hiragino Kaku Gothic ProN', Meiryo, sans-serif; max-width: 800px; margin: 0 auto; padding: 20px; background-color: #f5f5f5; }
.container { background-color: white; padding: 30px; border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
.header { text-align: center; margin-bottom: 30px; color: #333; }
.content { font-size: 14px; line-height: 1.6; white-space: pre-wrap; background-color: #f8f9fa; padding: 20px; border-radius: 4px; border: 1px solid #e9ecef; }
.footer { text-align: center; margin-top: 20px; color: #666; font-size: 12px; }
</style>
</head>
<body>
<div class="container">
<div class="header">
<h1>福岡イベント情報</h1>
<p>最終更新: {{.GeneratedAt}}</p>
</div>
<div class="content">{{.Body}}</div>
<div class="footer">
<p>このページは自動生成されています</p>
<p><a href="events.ics">カレンダー購読 (ICS)</a></p>
</div>
</div>
</body>
</html>
`))

type pageData struct {
	Date        string
	GeneratedAt string
	Body        string
}

// WriteHTML renders the digest body into {siteDir}/index.html.
func WriteHTML(siteDir, date, body string, now time.Time) error {
	if err := os.MkdirAll(siteDir, 0o755); err != nil {
		return err
	}

	f, err := os.Create(filepath.Join(siteDir, "index.html"))
	if err != nil {
		return err
	}
	defer f.Close()

	return pageTemplate.Execute(f, pageData{
		Date:        date,
		GeneratedAt: now.Format("2006-01-02 15:04 MST"),
		Body:        body,
	})
}
