package builtin

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
)

// Func produces a single generated value.
type Func func(f *gofakeit.Faker) any

// Registry maps alias names and namespace paths to generators.
// It is safe for concurrent use.
type Registry struct {
	mu        sync.Mutex
	faker     *gofakeit.Faker
	aliases   map[string]Func
	namespace map[string]map[string]Func
}

var segmentPattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

func NewRegistry() *Registry {
	r := &Registry{
		faker:     gofakeit.New(0),
		aliases:   make(map[string]Func),
		namespace: make(map[string]map[string]Func),
	}
	r.registerDefaults()
	return r
}

func (r *Registry) registerDefaults() {
	for name, fn := range defaultAliases {
		r.mustRegister(name, fn)
	}
	for name, fn := range defaultNamespace {
		r.mustRegister(name, fn)
	}
}

func (r *Registry) mustRegister(name string, fn Func) {
	if err := r.Register(name, fn); err != nil {
		panic(fmt.Sprintf("builtin: invalid default generator: %v", err))
	}
}

// Register adds a generator. Names without a dot become aliases; names of
// the form "group.member" go into the namespace.
func (r *Registry) Register(name string, fn Func) error {
	if fn == nil {
		return fmt.Errorf("generator %q: nil function", name)
	}
	segments := strings.Split(name, ".")
	for _, s := range segments {
		if !segmentPattern.MatchString(s) {
			return fmt.Errorf("generator %q: invalid name", name)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	switch len(segments) {
	case 1:
		if _, ok := r.aliases[name]; ok {
			return fmt.Errorf("generator %q: already registered", name)
		}
		r.aliases[name] = fn
	case 2:
		group, member := segments[0], segments[1]
		if r.namespace[group] == nil {
			r.namespace[group] = make(map[string]Func)
		}
		if _, ok := r.namespace[group][member]; ok {
			return fmt.Errorf("generator %q: already registered", name)
		}
		r.namespace[group][member] = fn
	default:
		return fmt.Errorf("generator %q: namespace paths must be group.member", name)
	}
	return nil
}

// Resolve generates a value for an alias or namespace path. The second
// return value is false when the path is unknown.
func (r *Registry) Resolve(path string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if fn, ok := r.aliases[path]; ok {
		return stringify(fn(r.faker)), true
	}

	group, member, found := strings.Cut(path, ".")
	if !found {
		return "", false
	}
	members, ok := r.namespace[group]
	if !ok {
		return "", false
	}
	fn, ok := members[member]
	if !ok {
		return "", false
	}
	return stringify(fn(r.faker)), true
}

// Names returns every registered alias and namespace path, sorted.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]string, 0, len(r.aliases))
	for name := range r.aliases {
		names = append(names, name)
	}
	for group, members := range r.namespace {
		for member := range members {
			names = append(names, group+"."+member)
		}
	}
	sort.Strings(names)
	return names
}

func stringify(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", val)
	}
}

var defaultAliases = map[string]Func{
	"guid":          func(_ *gofakeit.Faker) any { return uuid.New().String() },
	"randomUUID":    func(_ *gofakeit.Faker) any { return uuid.New().String() },
	"timestamp":     func(_ *gofakeit.Faker) any { return time.Now().Unix() },
	"isoTimestamp":  func(_ *gofakeit.Faker) any { return time.Now().UTC().Format("2006-01-02T15:04:05.000Z") },
	"randomInt":     func(f *gofakeit.Faker) any { return f.IntRange(0, 1000) },
	"randomBoolean": func(f *gofakeit.Faker) any { return f.Bool() },

	// Person
	"randomFirstName": func(f *gofakeit.Faker) any { return f.FirstName() },
	"randomLastName":  func(f *gofakeit.Faker) any { return f.LastName() },
	"randomFullName":  func(f *gofakeit.Faker) any { return f.Name() },
	"randomUserName":  func(f *gofakeit.Faker) any { return f.Username() },
	"randomJobTitle":  func(f *gofakeit.Faker) any { return f.JobTitle() },

	// Contact
	"randomEmail":       func(f *gofakeit.Faker) any { return f.Email() },
	"randomPhoneNumber": func(f *gofakeit.Faker) any { return f.Phone() },

	// Location
	"randomCity":          func(f *gofakeit.Faker) any { return f.City() },
	"randomCountry":       func(f *gofakeit.Faker) any { return f.Country() },
	"randomStreetAddress": func(f *gofakeit.Faker) any { return f.Street() },
	"randomZipCode":       func(f *gofakeit.Faker) any { return f.Zip() },

	// Lorem
	"randomLoremWord":      func(f *gofakeit.Faker) any { return f.LoremIpsumWord() },
	"randomLoremSentence":  func(f *gofakeit.Faker) any { return f.LoremIpsumSentence(6) },
	"randomLoremParagraph": func(f *gofakeit.Faker) any { return f.LoremIpsumParagraph(1, 4, 8, " ") },

	// Network
	"randomIP":         func(f *gofakeit.Faker) any { return f.IPv4Address() },
	"randomIPV6":       func(f *gofakeit.Faker) any { return f.IPv6Address() },
	"randomUrl":        func(f *gofakeit.Faker) any { return f.URL() },
	"randomDomainName": func(f *gofakeit.Faker) any { return f.DomainName() },
	"randomUserAgent":  func(f *gofakeit.Faker) any { return f.UserAgent() },

	// Finance
	"randomPrice":        func(f *gofakeit.Faker) any { return strconv.FormatFloat(f.Price(1, 1000), 'f', 2, 64) },
	"randomCurrencyCode": func(f *gofakeit.Faker) any { return f.CurrencyShort() },
	"randomBankAccount":  func(f *gofakeit.Faker) any { return f.AchAccount() },
	"randomCompanyName":  func(f *gofakeit.Faker) any { return f.Company() },
	"randomHexColor":     func(f *gofakeit.Faker) any { return f.HexColor() },
}

var defaultNamespace = map[string]Func{
	"person.firstName": func(f *gofakeit.Faker) any { return f.FirstName() },
	"person.lastName":  func(f *gofakeit.Faker) any { return f.LastName() },
	"person.fullName":  func(f *gofakeit.Faker) any { return f.Name() },
	"person.jobTitle":  func(f *gofakeit.Faker) any { return f.JobTitle() },

	"internet.email":      func(f *gofakeit.Faker) any { return f.Email() },
	"internet.userName":   func(f *gofakeit.Faker) any { return f.Username() },
	"internet.url":        func(f *gofakeit.Faker) any { return f.URL() },
	"internet.domainName": func(f *gofakeit.Faker) any { return f.DomainName() },
	"internet.ipv4":       func(f *gofakeit.Faker) any { return f.IPv4Address() },
	"internet.ipv6":       func(f *gofakeit.Faker) any { return f.IPv6Address() },
	"internet.mac":        func(f *gofakeit.Faker) any { return f.MacAddress() },
	"internet.userAgent":  func(f *gofakeit.Faker) any { return f.UserAgent() },

	"location.city":          func(f *gofakeit.Faker) any { return f.City() },
	"location.country":       func(f *gofakeit.Faker) any { return f.Country() },
	"location.state":         func(f *gofakeit.Faker) any { return f.State() },
	"location.streetAddress": func(f *gofakeit.Faker) any { return f.Street() },
	"location.zipCode":       func(f *gofakeit.Faker) any { return f.Zip() },
	"location.latitude":      func(f *gofakeit.Faker) any { return f.Latitude() },
	"location.longitude":     func(f *gofakeit.Faker) any { return f.Longitude() },

	"lorem.word":      func(f *gofakeit.Faker) any { return f.LoremIpsumWord() },
	"lorem.sentence":  func(f *gofakeit.Faker) any { return f.LoremIpsumSentence(6) },
	"lorem.paragraph": func(f *gofakeit.Faker) any { return f.LoremIpsumParagraph(1, 4, 8, " ") },

	"finance.amount":           func(f *gofakeit.Faker) any { return strconv.FormatFloat(f.Price(1, 1000), 'f', 2, 64) },
	"finance.currencyCode":     func(f *gofakeit.Faker) any { return f.CurrencyShort() },
	"finance.accountNumber":    func(f *gofakeit.Faker) any { return f.AchAccount() },
	"finance.routingNumber":    func(f *gofakeit.Faker) any { return f.AchRouting() },
	"finance.creditCardNumber": func(f *gofakeit.Faker) any { return f.CreditCardNumber(nil) },

	"phone.number": func(f *gofakeit.Faker) any { return f.Phone() },
	"company.name": func(f *gofakeit.Faker) any { return f.Company() },

	"string.uuid":      func(_ *gofakeit.Faker) any { return uuid.New().String() },
	"number.int":       func(f *gofakeit.Faker) any { return f.IntRange(0, 1000) },
	"datatype.boolean": func(f *gofakeit.Faker) any { return f.Bool() },
	"date.anytime":     func(f *gofakeit.Faker) any { return f.Date().UTC().Format(time.RFC3339) },
}
