package httpapi

import "encoding/xml"

// The document shapes below reproduce the legacy protocol's staging API
// field-for-field. Clients parse them strictly, so field names and the
// wrapped <string> list form are part of the contract.

type promoteRequest struct {
	XMLName xml.Name           `xml:"promoteRequest" json:"-"`
	Data    promoteRequestData `xml:"data" json:"data"`
}

type promoteRequestData struct {
	StagedRepositoryID string `xml:"stagedRepositoryId" json:"stagedRepositoryId"`
	Description        string `xml:"description" json:"description"`
}

type promoteResponse struct {
	XMLName xml.Name            `xml:"promoteResponse" json:"-"`
	Data    promoteResponseData `xml:"data" json:"data"`
}

type promoteResponseData struct {
	StagedRepositoryID string `xml:"stagedRepositoryId" json:"stagedRepositoryId"`
	Description        string `xml:"description" json:"description"`
}

type stagingActionRequest struct {
	XMLName xml.Name                 `xml:"stagingActionRequest" json:"-"`
	Data    stagingActionRequestData `xml:"data" json:"data"`
}

type stagingActionRequestData struct {
	StagedRepositoryIDs  []string `xml:"stagedRepositoryIds>string" json:"stagedRepositoryIds"`
	Description          string   `xml:"description" json:"description"`
	AutoDropAfterRelease bool     `xml:"autoDropAfterRelease" json:"autoDropAfterRelease"`
}

type stagingProfilesResponse struct {
	XMLName xml.Name         `xml:"stagingProfiles" json:"-"`
	Data    []stagingProfile `xml:"data>stagingProfile" json:"data"`
}

type profileResponse struct {
	XMLName xml.Name       `xml:"profileResponse" json:"-"`
	Data    stagingProfile `xml:"data" json:"data"`
}

type stagingProfile struct {
	ResourceURI                string            `xml:"resourceURI" json:"resourceURI"`
	ID                         string            `xml:"id" json:"id"`
	Name                       string            `xml:"name" json:"name"`
	RepositoryType             string            `xml:"repositoryType" json:"repositoryType"`
	RepositoryTemplateID       string            `xml:"repositoryTemplateId" json:"repositoryTemplateId"`
	RepositoryTargetID         string            `xml:"repositoryTargetId" json:"repositoryTargetId"`
	InProgress                 bool              `xml:"inProgress" json:"inProgress"`
	Order                      uint32            `xml:"order" json:"order"`
	DeployURI                  string            `xml:"deployURI" json:"deployURI"`
	TargetGroups               []string          `xml:"targetGroups>string" json:"targetGroups"`
	FinishNotifyRoles          []string          `xml:"finishNotifyRoles>string" json:"finishNotifyRoles"`
	PromotionNotifyRoles       []string          `xml:"promotionNotifyRoles>string" json:"promotionNotifyRoles"`
	DropNotifyRoles            []string          `xml:"dropNotifyRoles>string" json:"dropNotifyRoles"`
	CloseRuleSets              []string          `xml:"closeRuleSets>string" json:"closeRuleSets"`
	PromoteRuleSets            []string          `xml:"promoteRuleSets>string" json:"promoteRuleSets"`
	PromotionTargetRepository  string            `xml:"promotionTargetRepository" json:"promotionTargetRepository"`
	Mode                       string            `xml:"mode" json:"mode"`
	FinishNotifyCreator        bool              `xml:"finishNotifyCreator" json:"finishNotifyCreator"`
	PromotionNotifyCreator     bool              `xml:"promotionNotifyCreator" json:"promotionNotifyCreator"`
	DropNotifyCreator          bool              `xml:"dropNotifyCreator" json:"dropNotifyCreator"`
	AutoStagingDisabled        bool              `xml:"autoStagingDisabled" json:"autoStagingDisabled"`
	RepositoriesSearchable     bool              `xml:"repositoriesSearchable" json:"repositoriesSearchable"`
	Properties                 profileProperties `xml:"properties" json:"properties"`
}

type profileProperties struct {
	Class string `xml:"class,attr" json:"@class"`
}

func newStagingProfile(baseURL, namespace, resourceURI string) stagingProfile {
	return stagingProfile{
		ResourceURI:               resourceURI,
		ID:                        namespace,
		Name:                      namespace,
		RepositoryType:            "maven2",
		RepositoryTemplateID:      "default_hosted_release",
		RepositoryTargetID:        "repository_target_id",
		InProgress:                false,
		Order:                     12345,
		DeployURI:                 baseURL + "/service/local/staging/deploy/maven2",
		TargetGroups:              []string{"staging"},
		FinishNotifyRoles:         []string{namespace + "-deployer"},
		PromotionNotifyRoles:      []string{},
		DropNotifyRoles:           []string{},
		CloseRuleSets:             []string{"close_rule_set"},
		PromoteRuleSets:           []string{},
		PromotionTargetRepository: "releases",
		Mode:                      "BOTH",
		FinishNotifyCreator:       true,
		PromotionNotifyCreator:    true,
		DropNotifyCreator:         true,
		AutoStagingDisabled:       false,
		RepositoriesSearchable:    false,
		Properties:                profileProperties{Class: "linked-hash-map"},
	}
}

func newStagingProfilesResponse(baseURL string, namespaces []string) stagingProfilesResponse {
	profiles := make([]stagingProfile, 0, len(namespaces))
	for _, ns := range namespaces {
		profiles = append(profiles, newStagingProfile(
			baseURL,
			ns,
			baseURL+"/service/local/staging/profile_evaluate/"+ns,
		))
	}
	return stagingProfilesResponse{Data: profiles}
}

func newProfileResponse(baseURL, profileID string) profileResponse {
	return profileResponse{
		Data: newStagingProfile(
			baseURL,
			profileID,
			baseURL+"/service/local/staging/profiles/"+profileID+"/"+profileID,
		),
	}
}

type stagingRepositoryResponse struct {
	XMLName               xml.Name `xml:"stagingProfileRepository" json:"-"`
	ProfileID             string   `xml:"profileId" json:"profileId"`
	ProfileName           string   `xml:"profileName" json:"profileName"`
	ProfileType           string   `xml:"profileType" json:"profileType"`
	RepositoryID          string   `xml:"repositoryId" json:"repositoryId"`
	Type                  string   `xml:"type" json:"type"`
	Policy                string   `xml:"policy" json:"policy"`
	UserID                string   `xml:"userId" json:"userId"`
	UserAgent             string   `xml:"userAgent" json:"userAgent"`
	IPAddress             string   `xml:"ipAddress" json:"ipAddress"`
	RepositoryURI         string   `xml:"repositoryURI" json:"repositoryURI"`
	Created               string   `xml:"created" json:"created"`
	CreatedDate           string   `xml:"createdDate" json:"createdDate"`
	CreatedTimestamp      uint32   `xml:"createdTimestamp" json:"createdTimestamp"`
	Updated               string   `xml:"updated" json:"updated"`
	UpdatedDate           string   `xml:"updatedDate" json:"updatedDate"`
	UpdatedTimestamp      uint32   `xml:"updatedTimestamp" json:"updatedTimestamp"`
	Description           string   `xml:"description" json:"description"`
	Provider              string   `xml:"provider" json:"provider"`
	ReleaseRepositoryID   string   `xml:"releaseRepositoryId" json:"releaseRepositoryId"`
	ReleaseRepositoryName string   `xml:"releaseRepositoryName" json:"releaseRepositoryName"`
	Notifications         uint32   `xml:"notifications" json:"notifications"`
	Transitioning         bool     `xml:"transitioning" json:"transitioning"`
}

// newStagingRepositoryResponse fills the profile/audit fields with the fixed
// values the legacy server reports for repositories it no longer tracks in
// detail; only the repository id, state and URI vary.
func newStagingRepositoryResponse(baseURL, repositoryID, state string) stagingRepositoryResponse {
	return stagingRepositoryResponse{
		ProfileID:             "profile_id",
		ProfileName:           "profile_name",
		ProfileType:           "repository",
		RepositoryID:          repositoryID,
		Type:                  state,
		Policy:                "release",
		UserID:                "user_id",
		UserAgent:             "user_agent",
		IPAddress:             "ip_address",
		RepositoryURI:         baseURL + "/content/repositories/" + repositoryID,
		Created:               "1970-01-01T00:00:00.000Z",
		CreatedDate:           "Thu Jan 1 00:00:00 UTC 1970",
		CreatedTimestamp:      0,
		Updated:               "1970-01-01T00:00:00.000Z",
		UpdatedDate:           "Thu Jan 1 00:00:00 UTC 1970",
		UpdatedTimestamp:      0,
		Description:           "description",
		Provider:              "maven2",
		ReleaseRepositoryID:   "releases",
		ReleaseRepositoryName: "Releases",
		Notifications:         0,
		Transitioning:         false,
	}
}
