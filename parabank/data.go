package parabank

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/sethvargo/go-password/password"

	"github.com/hemantjanrao/playwrightFW/config"
)

// LoginTestData gives tests the credentials of the current environment.
type LoginTestData struct {
	users config.TestUsers
}

func NewLoginTestData(m *config.Manager) LoginTestData {
	return LoginTestData{users: m.TestUsers()}
}

func (d LoginTestData) ValidUser() config.User {
	return d.users.ValidUser
}

func (d LoginTestData) InvalidUser() config.User {
	return d.users.InvalidUser
}

// AdminUser returns the admin credentials, if the environment has any.
func (d LoginTestData) AdminUser() (config.User, bool) {
	if d.users.AdminUser == nil {
		return config.User{}, false
	}
	return *d.users.AdminUser, true
}

// Customer is a registration record for a new ParaBank customer.
type Customer struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Address   string `json:"address"`
	City      string `json:"city"`
	State     string `json:"state"`
	ZipCode   string `json:"zipCode"`
	Phone     string `json:"phone"`
	SSN       string `json:"ssn"`
}

// DefaultCustomer returns a valid customer whose username is unique to the current millisecond.
func DefaultCustomer() Customer {
	return Customer{
		Username:  fmt.Sprintf("testuser_%d", time.Now().UnixMilli()),
		Password:  "Test@1234",
		FirstName: "John",
		LastName:  "Doe",
		Address:   "123 Test Street",
		City:      "TestCity",
		State:     "CA",
		ZipCode:   "12345",
		Phone:     "555-1234",
		SSN:       "123-45-6789",
	}
}

// RandomString returns length random letters and digits.
func RandomString(length int) (string, error) {
	if length <= 0 {
		return "", nil
	}
	return password.Generate(length, length/4, 0, false, true)
}

func RandomEmail() (string, error) {
	s, err := RandomString(8)
	if err != nil {
		return "", err
	}
	return "test_" + s + "@example.com", nil
}

// RandomNumber returns an integer in [lo, hi].
func RandomNumber(lo, hi int) int {
	if hi < lo {
		lo, hi = hi, lo
	}
	return rand.IntN(hi-lo+1) + lo
}

func RandomPhoneNumber() string {
	return fmt.Sprintf("555-%d", RandomNumber(1000, 9999))
}

func RandomSSN() string {
	return fmt.Sprintf("%d-%d-%d", RandomNumber(100, 999), RandomNumber(10, 99), RandomNumber(1000, 9999))
}

func RandomZipCode() string {
	return fmt.Sprint(RandomNumber(10000, 99999))
}
