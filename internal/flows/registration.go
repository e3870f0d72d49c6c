package flows

import (
	"github.com/dadmor/campaignforge/internal/wizard"
)

// Registration wizard routes.
const (
	RegisterStep1Route = "/register/step1"
	RegisterStep2Route = "/register/step2"
	RegisterStep3Route = "/register/step3"
	LoginRoute         = "/login"
)

// RegistrationFlow declares the account registration wizard: basic
// details, password with confirmation, summary. No LLM operations; the
// terminal step creates the profile record.
func RegistrationFlow() wizard.Flow {
	return wizard.Flow{
		Process: wizard.Process{
			ID:    RegistrationProcessID,
			Title: "Registration",
			Steps: map[string]wizard.Step{
				"step1": {
					Title: "Basic details",
					Fields: map[string]wizard.Field{
						"email": {Type: wizard.FieldEmail, Title: "Email", Placeholder: "you@example.com"},
						"role": {
							Type:        wizard.FieldSelect,
							Title:       "Choose a role",
							Placeholder: "Choose your role",
							Options: []wizard.Option{
								{Value: "beneficiary", Label: "Beneficiary - creates orders"},
								{Value: "auditor", Label: "Auditor - reviews orders"},
								{Value: "contractor", Label: "Contractor - fulfils orders"},
							},
						},
					},
					Required: []string{"email", "role"},
				},
				"step2": {
					Title: "Password",
					Fields: map[string]wizard.Field{
						"password":        {Type: wizard.FieldPassword, Title: "Password", Placeholder: "At least 6 characters"},
						"confirmPassword": {Type: wizard.FieldPassword, Title: "Confirm password", Placeholder: "Repeat the password"},
					},
					Required: []string{"password", "confirmPassword"},
					Validate: func(data map[string]any) error {
						password := asString(data["password"])
						if len(password) < 6 {
							return &wizard.FieldError{Field: "password", Message: "password must be at least 6 characters"}
						}
						if password != asString(data["confirmPassword"]) {
							return &wizard.FieldError{Field: "confirmPassword", Message: "passwords do not match"}
						}
						return nil
					},
				},
				"step3": {
					Title:  "Summary",
					Fields: map[string]wizard.Field{},
				},
			},
			StepOrder: []string{"step1", "step2", "step3"},
		},
		Steps: []wizard.FlowStep{
			{Key: "step1", Route: RegisterStep1Route},
			{Key: "step2", Route: RegisterStep2Route},
			{Key: "step3", Route: RegisterStep3Route},
		},
		FinishRoute: LoginRoute,
	}
}
