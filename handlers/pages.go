package handlers

import "html/template"

// Page names registered with the gin engine.
const (
	PageConnected         = "connected"
	PageNoPages           = "no_pages"
	PageNoBusinessAccount = "no_business_account"
)

const pagesTemplate = `
{{define "connected"}}<!doctype html>
<html><head><meta charset="utf-8"><title>Connected</title></head><body>
<h2>✅ Connected</h2>
<p>You can close this tab and return to the app.</p>
</body></html>{{end}}

{{define "no_pages"}}<!doctype html>
<html><head><meta charset="utf-8"><title>No Facebook Pages granted</title></head><body>
<h2>❌ No Facebook Pages granted</h2>
<p>Please remove the app from <b>Facebook Settings → Business Integrations</b>, then run Connect again and
<b>expand “Choose what you allow”</b> and select your <b>Page</b> (and Instagram account) before continuing.</p>
</body></html>{{end}}

{{define "no_business_account"}}<!doctype html>
<html><head><meta charset="utf-8"><title>No connected Instagram account found</title></head><body>
<h2>❌ No connected Instagram account found</h2>
<ol>
  <li>Ensure your Instagram is a <b>Business/Creator</b> account.</li>
  <li>Link it to a <b>Facebook Page</b> (Instagram app → Settings → Accounts Center → add your Page).</li>
  <li>Remove this app from <b>Facebook Settings → Business Integrations</b> and run Connect again.<br>
      On the consent dialog, click <b>“Choose what you allow”</b> and select your <b>Page</b> and Instagram.</li>
  <li>Make sure you are an <b>Admin</b> on that Page with the Facebook account you used to log in.</li>
</ol>
</body></html>{{end}}
`

// Pages parses the static pages shown to the browser at the end of the flow.
func Pages() *template.Template {
	return template.Must(template.New("pages").Parse(pagesTemplate))
}
