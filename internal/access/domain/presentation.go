package domain

// Presentation holds display metadata for a role. It is the single lookup
// table UI collaborators use for labels, badge colors and icons.
type Presentation struct {
	Label      string `json:"label"`
	BadgeColor string `json:"badge_color"`
	Icon       string `json:"icon"`
}

var presentations = map[Role]Presentation{
	RoleAdmin:           {Label: "Admin", BadgeColor: "bg-red-100 text-red-800", Icon: "shield"},
	RoleModerator:       {Label: "Moderator", BadgeColor: "bg-blue-100 text-blue-800", Icon: "gavel"},
	RoleUser:            {Label: "User", BadgeColor: "bg-green-100 text-green-800", Icon: "user"},
	RoleServiceProvider: {Label: "Service Provider", BadgeColor: "bg-purple-100 text-purple-800", Icon: "briefcase"},
}

var fallbackPresentation = Presentation{BadgeColor: "bg-gray-100 text-gray-800", Icon: "user"}

// Presentation returns the display metadata for the role. Unknown roles get a
// neutral badge labelled with the raw value.
func (r Role) Presentation() Presentation {
	if p, ok := presentations[r]; ok {
		return p
	}
	p := fallbackPresentation
	p.Label = string(r)
	return p
}
