package form

// ContactForm is the payload of the site contact form.
type ContactForm struct {
	Name     string `json:"name" validate:"required" message:"Name is required"`
	Contact  string `json:"contact" validate:"required" message:"Contact information is required"`
	Question string `json:"question" validate:"required" message:"Question is required"`
}
