package dto

type CreateApplicationRequest struct {
	UserID    string `json:"user_id,omitempty"`
	CompanyID string `json:"company_id"`
	Type      string `json:"type"`
}

func (r CreateApplicationRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.CompanyID == "" {
		errors["company_id"] = "Company id is required"
	}
	if r.Type != "invite" && r.Type != "request" {
		errors["type"] = "Type must be invite or request"
	}
	if r.Type == "invite" && r.UserID == "" {
		errors["user_id"] = "Invite requires a target user id"
	}

	return errors
}

type UpdateRoleRequest struct {
	Role string `json:"role"`
}

func (r UpdateRoleRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Role != "member" && r.Role != "admin" {
		errors["role"] = "Role must be member or admin"
	}

	return errors
}
