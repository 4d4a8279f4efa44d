package email

// PreviewData holds sample values for every template, keyed by template
// then by variable name.
var PreviewData = map[Template]map[string]string{
	TemplateWelcome: {
		"UserFirstName": "Jonas",
		"AccountURL":    "http://localhost:8080/api/v1/users/me",
	},
	TemplatePasswordReset: {
		"UserFirstName": "Jonas",
		"ResetURL":      "http://localhost:8080/api/v1/users/reset-password/0123abcd",
		"ValidFor":      "90 minutes",
	},
}
