// Package classify maps an activity record's text fields to a category,
// sub-category and access type using an ordered list of keyword rules.
//
// The rules are evaluated in a fixed order and the first match wins. The
// package holds no mutable state, so Classify can be called from any number
// of goroutines.
package classify

import (
	"strings"

	"dataclassification/entity"
)

// fields carries one record's inputs to the rules. processRaw is the
// executable name as recorded; every other field is normalized.
type fields struct {
	processRaw string
	process    string
	title      string
	domain     string
	url        string
}

type rule struct {
	name  string
	match func(f fields) (entity.Classification, bool)
}

// rules is the evaluation order. Earlier rules shadow later ones: a title
// mentioning both facebook and youtube is a social network, "amazon prime"
// is streaming before plain "amazon" can be shopping.
var rules = []rule{
	{"social_network", matchSocialNetwork},
	{"streaming", matchStreaming},
	{"office", matchOffice},
	{"shopping", matchShopping},
	{"development", matchDevelopment},
	{"sebrae", matchSebrae},
	{"pdf_viewer", matchPDFViewer},
	{"skype", matchSkype},
}

// FallbackRule is the rule name reported by Match when nothing matched.
const FallbackRule = "fallback"

var fallback = entity.Classification{
	Category:   CategoryOther,
	AccessType: entity.AccessOther,
}

// Classify returns the classification of one activity. Missing fields must be
// passed as empty strings. The result always has a non-empty Category.
func Classify(process, title, domain, url string) entity.Classification {
	c, _ := Match(process, title, domain, url)
	return c
}

// Match is Classify that also reports which rule produced the result.
func Match(process, title, domain, url string) (entity.Classification, string) {
	f := fields{
		processRaw: process,
		process:    NormalizeProcess(process),
		title:      Normalize(title),
		domain:     Normalize(domain),
		url:        Normalize(url),
	}

	for _, r := range rules {
		if c, ok := r.match(f); ok {
			return c, r.name
		}
	}
	return fallback, FallbackRule
}

// ClassifyRecord classifies r in place.
func ClassifyRecord(r *entity.ActivityRecord) string {
	c, name := Match(r.ProcessName, r.WindowTitle, r.Domain, r.URLName)
	r.Classification = c
	return name
}

func matchSocialNetwork(f fields) (entity.Classification, bool) {
	if strings.Contains(f.title, whatsAppName) || strings.Contains(f.domain, whatsAppName) ||
		strings.Contains(f.url, whatsAppURL) {
		return entity.Classification{
			Category:    CategoryWhatsApp,
			SubCategory: "WhatsApp",
			AccessType:  entity.AccessPersonal,
		}, true
	}

	label, ok := firstSite(socialNetworks, f)
	if !ok {
		return entity.Classification{}, false
	}
	return entity.Classification{
		Category:    CategoryPersonal,
		SubCategory: label,
		AccessType:  entity.AccessPersonal,
	}, true
}

func matchStreaming(f fields) (entity.Classification, bool) {
	label, ok := firstSite(streamingApps, f)
	if !ok {
		return entity.Classification{}, false
	}
	return entity.Classification{
		Category:    CategoryPersonal,
		SubCategory: label,
		AccessType:  entity.AccessPersonal,
	}, true
}

func matchOffice(f fields) (entity.Classification, bool) {
	label, ok := officeApps.lookup(f)
	if !ok {
		return entity.Classification{}, false
	}
	return entity.Classification{
		Category:    CategoryOffice,
		SubCategory: label,
		AccessType:  entity.AccessOrganizational,
	}, true
}

func matchShopping(f fields) (entity.Classification, bool) {
	label, ok := firstSite(shoppingSites, f)
	if !ok {
		return entity.Classification{}, false
	}
	return entity.Classification{
		Category:    CategoryPersonal,
		SubCategory: label,
		AccessType:  entity.AccessPersonal,
	}, true
}

func matchDevelopment(f fields) (entity.Classification, bool) {
	label, ok := developmentApps.lookup(f)
	if !ok {
		return entity.Classification{}, false
	}
	return entity.Classification{
		Category:    CategoryDevelopment,
		SubCategory: label,
		AccessType:  entity.AccessOrganizational,
	}, true
}

func matchSebrae(f fields) (entity.Classification, bool) {
	for _, s := range sebraeSystems {
		if containsAny(f.title, s.names) || containsAny(f.domain, s.names) || containsAny(f.url, s.urls) ||
			runsSystem(f, s.processes, s.remoteTitles) {
			return entity.Classification{
				Category:    CategorySebrae,
				SubCategory: s.label,
				AccessType:  entity.AccessOrganizational,
			}, true
		}
	}
	return entity.Classification{}, false
}

// runsSystem reports whether the raw process is one of processes, or a remote
// desktop session whose title names the system.
func runsSystem(f fields, processes, remoteTitles []string) bool {
	for _, p := range processes {
		if processIs(f.processRaw, p) {
			return true
		}
	}
	return len(remoteTitles) > 0 && processIs(f.processRaw, remoteDesktopProcess) && hasWord(f.title, remoteTitles)
}

// matchPDFViewer and matchSkype look at the process name exactly as recorded,
// so "AcrobatPDF.exe" does not contain "pdf".
func matchPDFViewer(f fields) (entity.Classification, bool) {
	if strings.Contains(f.title, "pdf") || strings.Contains(f.url, "pdf") || strings.Contains(f.processRaw, "pdf") {
		return entity.Classification{
			Category:    CategoryPDFViewer,
			SubCategory: "PDF",
			AccessType:  entity.AccessOrganizational,
		}, true
	}
	return entity.Classification{}, false
}

func matchSkype(f fields) (entity.Classification, bool) {
	if strings.Contains(f.title, "skype") || strings.Contains(f.url, "skype") || strings.Contains(f.processRaw, "skype") {
		return entity.Classification{
			Category:    CategoryCommunication,
			SubCategory: "Skype Activity",
			AccessType:  entity.AccessOrganizational,
		}, true
	}
	return entity.Classification{}, false
}
