package entity

type ResourceKind string

const (
	ResourceProject ResourceKind = "project"
	ResourceChat    ResourceKind = "chat"
)

func (k ResourceKind) Label() string {
	switch k {
	case ResourceProject:
		return "Project"
	case ResourceChat:
		return "Chat"
	}
	return string(k)
}
