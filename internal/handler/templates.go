package handler

import "html/template"

// Minimal server-rendered pages for the public resolve path. The
// management surface is JSON-only; these cover the browser-facing
// outcomes that cannot be a bare redirect.

const notFoundPage = `<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>Not found</title></head>
<body>
<h1>404</h1>
<p>Nothing lives at this address.</p>
</body>
</html>`

const expiredPage = `<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>Link expired</title></head>
<body>
<h1>Link expired</h1>
<p>This link is no longer available.</p>
</body>
</html>`

const passwordPage = `<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>Protected link</title></head>
<body>
<h1>This link is protected</h1>
{{if .Gone}}<p>This link is no longer valid.</p>{{else}}
{{if .Invalid}}<p>Incorrect password, try again.</p>{{end}}
<form method="POST" action="/{{.ShortCode}}">
<input type="password" name="password" autofocus required>
<button type="submit">Unlock</button>
</form>
{{end}}</body>
</html>`

const micrositePage = `<!DOCTYPE html>
<html lang="en" data-theme="{{.Site.Theme}}">
<head>
<meta charset="utf-8">
<title>{{.Site.Title}}</title>
{{if .Site.Description}}<meta name="description" content="{{.Site.Description}}">{{end}}
</head>
<body>
{{if .Site.CoverImage}}<img class="cover" src="{{.Site.CoverImage}}" alt="">{{end}}
{{if .Site.AvatarImage}}<img class="avatar" src="{{.Site.AvatarImage}}" alt="">{{end}}
<h1>{{.Site.Title}}</h1>
{{if .Owner}}<p class="owner">{{.Owner.Name}}</p>{{end}}
{{if .Site.Description}}<p>{{.Site.Description}}</p>{{end}}
<ul>
{{range .Links}}<li><a href="/l/{{.ID}}">{{if .Icon}}<span class="icon">{{.Icon}}</span> {{end}}{{.Title}}</a></li>
{{end}}</ul>
</body>
</html>`

// pageTemplates parses the public pages once at startup.
func pageTemplates() map[string]*template.Template {
	return map[string]*template.Template{
		"not_found": template.Must(template.New("not_found").Parse(notFoundPage)),
		"expired":   template.Must(template.New("expired").Parse(expiredPage)),
		"password":  template.Must(template.New("password").Parse(passwordPage)),
		"microsite": template.Must(template.New("microsite").Parse(micrositePage)),
	}
}
