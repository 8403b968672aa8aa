package classify

import "github.com/packagewjx/traffic-classifier/pkg/core"

var priorities = map[string]core.Priority{
	"VoIP":               core.PriorityHigh,
	"Video_Conferencing": core.PriorityHigh,
	"Web_Browsing":       core.PriorityMedium,
	"Email":              core.PriorityMedium,
	"File_Transfer":      core.PriorityMedium,
	"Gaming":             core.PriorityMedium,
	"Video_Streaming":    core.PriorityLow,
	"Social_Media":       core.PriorityLow,
}

const DefaultPriority = core.PriorityMedium

// 查询应用的优先级，不在表中的应用为MEDIUM
func PriorityOf(application string) core.Priority {
	p, ok := priorities[application]
	if !ok {
		return DefaultPriority
	}
	return p
}
