package httpapi

import (
	"encoding/xml"
	"net/http"
)

// statusResponse mimics the legacy repository manager's status document.
// Build tools probe this endpoint to decide which API dialect to speak, so
// the version and edition fields are fixed to values they accept.
type statusResponse struct {
	XMLName xml.Name   `xml:"status" json:"-"`
	Data    statusData `xml:"data" json:"data"`
}

type statusData struct {
	AppName               string `xml:"appName" json:"appName"`
	FormattedAppName      string `xml:"formattedAppName" json:"formattedAppName"`
	Version               string `xml:"version" json:"version"`
	APIVersion            string `xml:"apiVersion" json:"apiVersion"`
	EditionLong           string `xml:"editionLong" json:"editionLong"`
	EditionShort          string `xml:"editionShort" json:"editionShort"`
	AttributionsURL       string `xml:"attributionsURL" json:"attributionsURL"`
	PurchaseURL           string `xml:"purchaseURL" json:"purchaseURL"`
	UserLicenseURL        string `xml:"userLicenseURL" json:"userLicenseURL"`
	State                 string `xml:"state" json:"state"`
	InitializedAt         string `xml:"initializedAt" json:"initializedAt"`
	StartedAt             string `xml:"startedAt" json:"startedAt"`
	LastConfigChange      string `xml:"lastConfigChange" json:"lastConfigChange"`
	FirstStart            bool   `xml:"firstStart" json:"firstStart"`
	InstanceUpgraded      bool   `xml:"instanceUpgraded" json:"instanceUpgraded"`
	ConfigurationUpgraded bool   `xml:"configurationUpgraded" json:"configurationUpgraded"`
	BaseURL               string `xml:"baseUrl" json:"baseUrl"`
	LicenseInstalled      bool   `xml:"licenseInstalled" json:"licenseInstalled"`
	LicenseExpired        bool   `xml:"licenseExpired" json:"licenseExpired"`
	TrialLicense          bool   `xml:"trialLicense" json:"trialLicense"`
}

func newStatusResponse(baseURL string) statusResponse {
	return statusResponse{
		Data: statusData{
			AppName:               "Nexus Repository Manager",
			FormattedAppName:      "Nexus Repository Manager",
			Version:               "2.15.1-02",
			APIVersion:            "2.15.1-02",
			EditionLong:           "Professional",
			EditionShort:          "PRO",
			AttributionsURL:       "http://links.sonatype.com/products/nexus/pro/attributions",
			PurchaseURL:           "http://links.sonatype.com/products/nexus/pro/store",
			UserLicenseURL:        "http://links.sonatype.com/products/nexus/pro/eula",
			State:                 "STARTED",
			InitializedAt:         "1970-01-01 00:00:00.000 UTC",
			StartedAt:             "1970-01-01 00:00:00.000 UTC",
			LastConfigChange:      "1970-01-01 00:00:00.000 UTC",
			FirstStart:            false,
			InstanceUpgraded:      false,
			ConfigurationUpgraded: false,
			BaseURL:               baseURL,
			LicenseInstalled:      true,
			LicenseExpired:        false,
			TrialLicense:          false,
		},
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if err := respondXML(w, http.StatusOK, newStatusResponse(baseURL(r))); err != nil {
		s.log.Error(r.Context(), "writing status response", "error", err)
	}
}
