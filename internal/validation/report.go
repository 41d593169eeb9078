package validation

import (
	"strings"

	"github.com/ignatzorin/watersafe-backend/internal/models"
)

// CreateReportRequest - тело POST /reports в том виде, как его присылает форма.
type CreateReportRequest struct {
	Name              *string `json:"name"`
	Email             *string `json:"email"`
	Location          string  `json:"location"`
	Coordinates       *string `json:"coordinates"`
	IssueType         string  `json:"issueType"`
	Priority          string  `json:"priority"`
	Description       string  `json:"description"`
	Anonymous         *bool   `json:"anonymous"`
	ContactForUpdates *bool   `json:"contactForUpdates"`
}

// NewReport - проверенная и типизированная заявка, из которой создаётся обращение.
type NewReport struct {
	Location          string
	RawCoordinates    *string
	IssueType         string
	Description       string
	Priority          models.ReportPriority
	Name              *string
	Email             *string
	Anonymous         bool
	ContactForUpdates bool
}

// UpdateReportRequest - тело PATCH /reports/:id.
type UpdateReportRequest struct {
	Status           *string               `json:"status"`
	OfficialResponse models.OptionalString `json:"officialResponse"`
	ActionTaken      models.OptionalString `json:"actionTaken"`
	Priority         *string               `json:"priority"`
}

const priorityChoices = "must be one of low, medium, high, critical"

// ValidateCreateReport проверяет заявку целиком и возвращает все нарушения разом.
func ValidateCreateReport(req CreateReportRequest) (*NewReport, error) {
	var errs fieldErrors

	out := &NewReport{
		Location:          requireText(&errs, "location", req.Location, MaxLocationLength),
		IssueType:         requireText(&errs, "issueType", req.IssueType, MaxIssueTypeLength),
		Description:       requireText(&errs, "description", req.Description, MaxDescriptionLength),
		Anonymous:         req.Anonymous != nil && *req.Anonymous,
		ContactForUpdates: req.ContactForUpdates == nil || *req.ContactForUpdates,
	}

	if strings.TrimSpace(req.Priority) == "" {
		errs.add("priority", "is required")
	} else if p, ok := models.ParseReportPriority(req.Priority); ok {
		out.Priority = p
	} else {
		errs.add("priority", priorityChoices)
	}

	// Координаты не проверяются здесь: любую строку разбирает geo, неудачный разбор не ошибка.
	out.RawCoordinates = optionalText(req.Coordinates)

	if out.Anonymous {
		// Анонимность сильнее формы: имя, email и подписку стираем, что бы ни прислали.
		out.Name = nil
		out.Email = nil
		out.ContactForUpdates = false
		return out, errs.err()
	}

	if name := optionalText(req.Name); name != nil && checkLength(&errs, "name", *name, MaxNameLength) {
		out.Name = name
	}

	if email := optionalText(req.Email); email != nil {
		switch {
		case !checkLength(&errs, "email", *email, MaxEmailLength):
		case !IsEmail(*email):
			errs.add("email", "must be a valid email address")
		default:
			out.Email = email
		}
	}

	return out, errs.err()
}

// ValidateUpdateReport превращает тело PATCH в типизированное обновление.
func ValidateUpdateReport(req UpdateReportRequest) (models.ReportUpdate, error) {
	var errs fieldErrors
	var upd models.ReportUpdate

	if req.Status != nil {
		if s, ok := models.ParseReportStatus(*req.Status); ok {
			upd.Status = &s
		} else {
			errs.add("status", "must be one of PENDING, INVESTIGATING, RESOLVED")
		}
	}

	if req.Priority != nil {
		if p, ok := models.ParseReportPriority(*req.Priority); ok {
			upd.Priority = &p
		} else {
			errs.add("priority", "must be one of LOW, MEDIUM, HIGH, CRITICAL")
		}
	}

	if req.OfficialResponse.Set && req.OfficialResponse.Value != nil {
		checkLength(&errs, "officialResponse", *req.OfficialResponse.Value, MaxResponseLength)
	}
	if req.ActionTaken.Set && req.ActionTaken.Value != nil {
		checkLength(&errs, "actionTaken", *req.ActionTaken.Value, MaxResponseLength)
	}
	upd.OfficialResponse = req.OfficialResponse
	upd.ActionTaken = req.ActionTaken

	return upd, errs.err()
}

// ParseReportFilter разбирает параметры поиска; "all" и пустое значение отключают фильтр.
func ParseReportFilter(search, status, priority string) (models.ReportFilter, error) {
	var errs fieldErrors
	filter := models.ReportFilter{Search: strings.TrimSpace(search)}

	checkLength(&errs, "search", filter.Search, MaxSearchLength)

	if !isAll(status) {
		if s, ok := models.ParseReportStatus(status); ok {
			filter.Status = &s
		} else {
			errs.add("status", "must be all or one of pending, investigating, resolved")
		}
	}

	if !isAll(priority) {
		if p, ok := models.ParseReportPriority(priority); ok {
			filter.Priority = &p
		} else {
			errs.add("priority", "must be all or one of low, medium, high, critical")
		}
	}

	return filter, errs.err()
}

func isAll(v string) bool {
	v = strings.TrimSpace(v)
	return v == "" || strings.EqualFold(v, "all")
}
