package dto

type CreateCompanyRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	IsPrivate   bool   `json:"is_private"`
}

func (r CreateCompanyRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Name == "" {
		errors["name"] = "Name is required"
	} else if len(r.Name) > 50 {
		errors["name"] = "Name must be at most 50 characters"
	}
	if len(r.Description) > 500 {
		errors["description"] = "Description must be at most 500 characters"
	}

	return errors
}

type UpdateCompanyRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	IsPrivate   *bool   `json:"is_private,omitempty"`
}

func (r UpdateCompanyRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Name != nil {
		if *r.Name == "" {
			errors["name"] = "Name cannot be empty"
		} else if len(*r.Name) > 50 {
			errors["name"] = "Name must be at most 50 characters"
		}
	}
	if r.Description != nil && len(*r.Description) > 500 {
		errors["description"] = "Description must be at most 500 characters"
	}

	return errors
}
