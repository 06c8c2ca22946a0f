package classify

import "strings"

const (
	CategoryWhatsApp      = "WhatsApp"
	CategoryPersonal      = "Pessoais"
	CategoryOffice        = "Aplicativo de Escritório"
	CategoryDevelopment   = "Aplicativos de Desenvolvimento"
	CategorySebrae        = "Acessos Sebrae"
	CategoryPDFViewer     = "PDF Viewer"
	CategoryCommunication = "Comunication"
	CategoryOther         = "Outros"
)

// keyword maps a substring to the label it stands for.
type keyword struct {
	key   string
	label string
}

// site is a named web destination recognised by its name (in any field) or by
// one of its domains (in domain or URL only).
type site struct {
	label   string
	names   []string
	domains []string
}

// appTables holds the four lookups used for installed or web applications.
// They are consulted in field order: process, domain, url, title.
type appTables struct {
	processes []keyword
	domains   []keyword
	urls      []keyword
	titles    []keyword
}

// Tables are written the way a person would type them and folded once with
// the same normalizers that are applied to the record fields. Free-text keys
// go through foldKey, which drops keys like "notepad++" that Normalize would
// shorten into something broader.
var (
	socialNetworks = normalizeSites([]site{
		{label: "Facebook", names: []string{"facebook"}},
		{label: "Instagram", names: []string{"instagram"}},
		{label: "Twitter", names: []string{"twitter"}},
		{label: "LinkedIn", names: []string{"linkedin"}},
		{label: "TikTok", names: []string{"tiktok"}},
		{label: "Snapchat", names: []string{"snapchat"}},
		{label: "Reddit", names: []string{"reddit"}},
		{label: "Pinterest", names: []string{"pinterest"}},
		{label: "Tumblr", names: []string{"tumblr"}},
		{label: "Weibo", names: []string{"weibo"}},
	})

	whatsAppName = Normalize("whatsapp")
	whatsAppURL  = Normalize("web.whatsapp.com")

	streamingApps = normalizeSites([]site{
		{label: "YouTube", names: []string{"youtube"}, domains: []string{"youtube.com"}},
		{label: "Twitch", names: []string{"twitch"}, domains: []string{"twitch.tv"}},
		{label: "Netflix", names: []string{"netflix"}, domains: []string{"netflix.com"}},
		{label: "Disney+", domains: []string{"disneyplus.com"}},
		{label: "Hulu", names: []string{"hulu"}, domains: []string{"hulu.com"}},
		{label: "Amazon Prime", names: []string{"amazon prime"}, domains: []string{"primevideo.com"}},
		{label: "Spotify", names: []string{"spotify"}, domains: []string{"spotify.com"}},
	})

	shoppingSites = normalizeSites([]site{
		{label: "Shopee", names: []string{"shopee"}},
		{label: "AliExpress", names: []string{"aliexpress"}},
		{label: "Mercado Livre", names: []string{"mercado livre", "mercadolivre"}},
		{label: "OLX", names: []string{"olx"}},
		{label: "Amazon", names: []string{"amazon"}},
	})

	officeWebApps = []keyword{
		{"outlook.office.com", "Microsoft Outlook"},
		{"office.com", "Office Online"},
		{"docs.google.com", "Google Docs"},
		{"sheets.google.com", "Google Sheets"},
		{"slides.google.com", "Google Slides"},
		{"teams.microsoft.com", "Microsoft Teams"},
		{"zoom.us", "Zoom"},
		{"meet.google.com", "Google Meet"},
	}

	officeApps = appTables{
		processes: normalizeKeywords(NormalizeProcess, []keyword{
			{"winword.exe", "Microsoft Word"},
			{"excel.exe", "Microsoft Excel"},
			{"powerpoint.exe", "Microsoft PowerPoint"},
			{"powerpnt.exe", "Microsoft PowerPoint"},
			{"outlook.exe", "Microsoft Outlook"},
			{"onenote.exe", "OneNote"},
			{"ms-teams.exe", "Microsoft Teams"},
			{"msteams.exe", "Microsoft Teams"},
			{"zoom.exe", "Zoom"},
		}),
		domains: normalizeKeywords(foldKey, officeWebApps),
		urls:    normalizeKeywords(foldKey, officeWebApps),
		titles: normalizeKeywords(foldKey, []keyword{
			{"microsoft word", "Microsoft Word"},
			{"ms word", "Microsoft Word"},
			{"google docs", "Google Docs"},
			{"microsoft excel", "Microsoft Excel"},
			{"ms excel", "Microsoft Excel"},
			{"google sheets", "Google Sheets"},
			{"microsoft powerpoint", "Microsoft PowerPoint"},
			{"ms powerpoint", "Microsoft PowerPoint"},
			{"microsoft outlook", "Microsoft Outlook"},
			{"outlook", "Microsoft Outlook"},
			{"onenote", "OneNote"},
			{"microsoft teams", "Microsoft Teams"},
			{"teams", "Microsoft Teams"},
			{"zoom meeting", "Zoom"},
			{"google meet", "Google Meet"},
		}),
	}

	developmentWebApps = []keyword{
		{"github.com", "GitHub"},
		{"gitlab.com", "GitLab"},
		{"bitbucket.org", "Bitbucket"},
		{"stackoverflow.com", "Stack Overflow"},
	}

	developmentApps = appTables{
		processes: normalizeKeywords(NormalizeProcess, []keyword{
			{"vscode", "Visual Studio Code"},
			{"code.exe", "Visual Studio Code"},
			{"githubdesktop.exe", "GitHub Desktop"},
			{"git.exe", "Git"},
			{"mysqlworkbench.exe", "MySQL Workbench"},
			{"sqlserver.exe", "SQL Server"},
			{"ssms.exe", "SQL Server Management Studio"},
			{"intellij.exe", "IntelliJ IDEA"},
			{"idea64.exe", "IntelliJ IDEA"},
			{"pycharmec.exe", "PyCharm"},
			{"pycharm64.exe", "PyCharm"},
			{"eclipsecpp.exe", "Eclipse"},
			{"eclipse.exe", "Eclipse"},
			{"sublime_text.exe", "Sublime Text"},
			{"postman.exe", "Postman"},
			{"dockerdesktop.exe", "Docker Desktop"},
			{"docker desktop.exe", "Docker Desktop"},
			{"terminal.exe", "Terminal"},
			{"windowsterminal.exe", "Terminal"},
			{"notepadpp.exe", "Notepad++"},
			{"notepad++.exe", "Notepad++"},
		}),
		domains: normalizeKeywords(foldKey, developmentWebApps),
		urls:    normalizeKeywords(foldKey, developmentWebApps),
		titles: normalizeKeywords(foldKey, []keyword{
			{"visual studio code", "Visual Studio Code"},
			{"mysql workbench", "MySQL Workbench"},
			{"sql server", "SQL Server"},
			{"intellij", "IntelliJ IDEA"},
			{"pycharm", "PyCharm"},
			{"eclipse", "Eclipse"},
			{"sublime text", "Sublime Text"},
			{"postman", "Postman"},
			{"docker", "Docker"},
			{"terminal", "Terminal"},
			{"stack overflow", "Stack Overflow"},
		}),
	}

	// sebraeSystems lists the organization's internal systems. names are
	// searched in title and domain, urls in the URL. processes are compared
	// with the raw process name, case-sensitive. remoteTitles are title words
	// that identify the system inside a remote desktop session.
	sebraeSystems = []struct {
		label        string
		names        []string
		urls         []string
		processes    []string
		remoteTitles []string
	}{
		{label: "Cérebro", names: normalizeAll("cerebro"), urls: normalizeAll("cerebro.com", "cerebro.df.sebrae.com.br")},
		{label: "RM", names: normalizeAll("rm.exe"), urls: normalizeAll("rm.com"), processes: []string{"rm.exe"}, remoteTitles: []string{"rm"}},
		{label: "Outlook", names: normalizeAll("outlook"), urls: normalizeAll("outlook.office.com")},
		{label: "PDF", names: normalizeAll("pdf"), urls: normalizeAll("pdf", ".pdf")},
	}
)

// remoteDesktopProcess is the Windows remote desktop client.
const remoteDesktopProcess = "mstsc.exe"

// foldKey normalizes a free-text key. Only periods may be lost on the way:
// a key that loses anything else ("disney+" would become "disney") is
// dropped, since the literal key can never appear in a normalized field.
func foldKey(key string) string {
	n := Normalize(key)
	if n != strings.ToLower(strings.ReplaceAll(key, ".", "")) {
		return ""
	}
	return n
}

func normalizeAll(values ...string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if n := foldKey(v); n != "" {
			out = append(out, n)
		}
	}
	return out
}

func normalizeSites(sites []site) []site {
	out := make([]site, len(sites))
	for i, s := range sites {
		out[i] = site{label: s.label, names: normalizeAll(s.names...), domains: normalizeAll(s.domains...)}
	}
	return out
}

func normalizeKeywords(normalize func(string) string, table []keyword) []keyword {
	out := make([]keyword, 0, len(table))
	for _, kw := range table {
		if k := normalize(kw.key); k != "" {
			out = append(out, keyword{key: k, label: kw.label})
		}
	}
	return out
}

// processIs reports whether the raw process name is name, either bare or at
// the end of a path.
func processIs(raw, name string) bool {
	return raw == name || strings.HasSuffix(raw, `\`+name) || strings.HasSuffix(raw, "/"+name)
}

func hasWord(s string, words []string) bool {
	for _, field := range strings.Fields(s) {
		for _, w := range words {
			if field == w {
				return true
			}
		}
	}
	return false
}

func containsAny(s string, keys []string) bool {
	for _, k := range keys {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

// firstSite returns the label of the first site, in table order, whose name
// appears in any field or whose domain appears in the domain or URL.
func firstSite(sites []site, f fields) (string, bool) {
	for _, s := range sites {
		if containsAny(f.title, s.names) || containsAny(f.domain, s.names) || containsAny(f.url, s.names) ||
			containsAny(f.domain, s.domains) || containsAny(f.url, s.domains) {
			return s.label, true
		}
	}
	return "", false
}

func firstKeyword(table []keyword, s string) (string, bool) {
	if s == "" {
		return "", false
	}
	for _, kw := range table {
		if strings.Contains(s, kw.key) {
			return kw.label, true
		}
	}
	return "", false
}

// lookup checks the process table first, then domain, url and title. The
// first table with a hit decides.
func (t appTables) lookup(f fields) (string, bool) {
	if label, ok := firstKeyword(t.processes, f.process); ok {
		return label, true
	}
	if label, ok := firstKeyword(t.domains, f.domain); ok {
		return label, true
	}
	if label, ok := firstKeyword(t.urls, f.url); ok {
		return label, true
	}
	return firstKeyword(t.titles, f.title)
}
