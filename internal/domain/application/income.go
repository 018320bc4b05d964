package application

import (
	"encoding/json"
	"fmt"
)

type IncomeType string

const (
	IncomeEmployedSalary          IncomeType = "employed-salary"
	IncomeEmployedHourly          IncomeType = "employed-hourly"
	IncomeSelfEmployedProprietor  IncomeType = "self-employed-proprietor"
	IncomeSelfEmployedPartnership IncomeType = "self-employed-partnership"
	IncomeOther                   IncomeType = "other"
)

func (t IncomeType) IsKnown() bool {
	switch t {
	case IncomeEmployedSalary, IncomeEmployedHourly, IncomeSelfEmployedProprietor,
		IncomeSelfEmployedPartnership, IncomeOther:
		return true
	}
	return false
}

// IncomeDetail is implemented by the variant payloads of an IncomeSource.
type IncomeDetail interface {
	incomeType() IncomeType
}

type SalaryIncome struct {
	JobTitle               string `json:"jobTitle,omitempty"`
	Company                string `json:"company,omitempty"`
	StartYear              string `json:"startYear,omitempty"`
	StartMonth             string `json:"startMonth,omitempty"`
	AnnualIncome           string `json:"annualIncome,omitempty"`
	AdditionalCompensation string `json:"additionalCompensation,omitempty"`
}

type HourlyIncome struct {
	JobTitle               string `json:"jobTitle,omitempty"`
	Company                string `json:"company,omitempty"`
	StartYear              string `json:"startYear,omitempty"`
	StartMonth             string `json:"startMonth,omitempty"`
	HourlyRate             string `json:"hourlyRate,omitempty"`
	HoursPerWeek           string `json:"hoursPerWeek,omitempty"`
	AnnualIncome           string `json:"annualIncome,omitempty"`
	PaycheckFrequency      string `json:"paycheckFrequency,omitempty"`
	AdditionalCompensation string `json:"additionalCompensation,omitempty"`
}

type ProprietorIncome struct {
	Description  string `json:"description,omitempty"`
	AnnualIncome string `json:"annualIncome,omitempty"`
	StartYear    string `json:"startYear,omitempty"`
	StartMonth   string `json:"startMonth,omitempty"`
}

type PartnershipIncome struct {
	Description  string `json:"description,omitempty"`
	AnnualIncome string `json:"annualIncome,omitempty"`
	StartYear    string `json:"startYear,omitempty"`
	StartMonth   string `json:"startMonth,omitempty"`
}

// OtherIncome also carries sources whose tag is not recognised; RawType keeps
// the tag as submitted so it survives a round trip.
type OtherIncome struct {
	OtherIncomeType string `json:"otherIncomeType,omitempty"`
	YearlyAmount    string `json:"yearlyAmount,omitempty"`
	RawType         string `json:"-"`
}

func (SalaryIncome) incomeType() IncomeType      { return IncomeEmployedSalary }
func (HourlyIncome) incomeType() IncomeType      { return IncomeEmployedHourly }
func (ProprietorIncome) incomeType() IncomeType  { return IncomeSelfEmployedProprietor }
func (PartnershipIncome) incomeType() IncomeType { return IncomeSelfEmployedPartnership }
func (OtherIncome) incomeType() IncomeType       { return IncomeOther }

// IncomeSource is one entry of incomeInfo.sources. On the wire the variant
// fields sit next to id and incomeType in a single flat object.
type IncomeSource struct {
	ID     string
	Type   IncomeType
	Detail IncomeDetail
}

type incomeHeader struct {
	ID         string `json:"id,omitempty"`
	IncomeType string `json:"incomeType"`
}

func (s *IncomeSource) UnmarshalJSON(b []byte) error {
	var head incomeHeader
	if err := json.Unmarshal(b, &head); err != nil {
		return err
	}
	s.ID = head.ID

	var err error
	switch IncomeType(head.IncomeType) {
	case IncomeEmployedSalary:
		var d SalaryIncome
		err = json.Unmarshal(b, &d)
		s.Detail = d
	case IncomeEmployedHourly:
		var d HourlyIncome
		err = json.Unmarshal(b, &d)
		s.Detail = d
	case IncomeSelfEmployedProprietor:
		var d ProprietorIncome
		err = json.Unmarshal(b, &d)
		s.Detail = d
	case IncomeSelfEmployedPartnership:
		var d PartnershipIncome
		err = json.Unmarshal(b, &d)
		s.Detail = d
	default:
		var d OtherIncome
		err = json.Unmarshal(b, &d)
		if IncomeType(head.IncomeType) != IncomeOther {
			d.RawType = head.IncomeType
		}
		s.Detail = d
	}
	if err != nil {
		return fmt.Errorf("income source %q: %w", head.IncomeType, err)
	}
	s.Type = s.Detail.incomeType()
	return nil
}

func (s IncomeSource) MarshalJSON() ([]byte, error) {
	detail := s.Detail
	if detail == nil {
		detail = OtherIncome{}
	}
	tag := string(detail.incomeType())
	if o, ok := detail.(OtherIncome); ok && o.RawType != "" {
		tag = o.RawType
	}

	body, err := json.Marshal(detail)
	if err != nil {
		return nil, err
	}
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, err
	}
	if s.ID != "" {
		id, _ := json.Marshal(s.ID)
		fields["id"] = id
	}
	t, _ := json.Marshal(tag)
	fields["incomeType"] = t
	return json.Marshal(fields)
}

// CloneIncomeSources copies every source. Variant payloads hold only value
// fields, so copying the struct is a full copy.
func CloneIncomeSources(in []IncomeSource) []IncomeSource {
	if in == nil {
		return nil
	}
	out := make([]IncomeSource, len(in))
	for i, src := range in {
		out[i] = IncomeSource{ID: src.ID, Type: src.Type, Detail: cloneDetail(src.Detail)}
	}
	return out
}

func cloneDetail(d IncomeDetail) IncomeDetail {
	switch v := d.(type) {
	case SalaryIncome:
		return v
	case HourlyIncome:
		return v
	case ProprietorIncome:
		return v
	case PartnershipIncome:
		return v
	case OtherIncome:
		return v
	case nil:
		return nil
	default:
		panic(fmt.Sprintf("application: unhandled income detail %T", d))
	}
}
