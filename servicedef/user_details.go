package servicedef

import "gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"

// UserDetail is one entry of the user directory served by the harness's mock
// user-details endpoint. Phone and state are optional in the schema, so they use
// optional types rather than empty strings to keep "absent" distinct from "".
type UserDetail struct {
	ID          string           `json:"id"`
	Username    string           `json:"username"`
	FullName    string           `json:"full_name"`
	IsActive    bool             `json:"is_active"`
	Contact     UserContact      `json:"contact"`
	Permissions []UserPermission `json:"permissions"`
}

type UserContact struct {
	Email     string                 `json:"email"`
	Phone     ldvalue.OptionalString `json:"phone"`
	Addresses []UserAddress          `json:"addresses"`
}

type UserAddress struct {
	Street    string                 `json:"street"`
	City      string                 `json:"city"`
	State     ldvalue.OptionalString `json:"state"`
	ZipCode   string                 `json:"zip_code"`
	Country   string                 `json:"country"`
	IsPrimary bool                   `json:"is_primary"`
}

type UserPermission struct {
	Name  string `json:"name"`
	Level int    `json:"level"`
}

// UserDetailsFixture is the canned directory data. Slices are initialized to empty
// rather than nil so that they serialize as [] instead of null.
var UserDetailsFixture = []UserDetail{
	{
		ID:       "1",
		Username: "alice.smith",
		FullName: "Alice Smith",
		IsActive: true,
		Contact: UserContact{
			Email: "alice.smith@example.com",
			Phone: ldvalue.NewOptionalString("+1234567890"),
			Addresses: []UserAddress{
				{
					Street:    "123 Main St",
					City:      "New York",
					State:     ldvalue.NewOptionalString("NY"),
					ZipCode:   "10001",
					Country:   "USA",
					IsPrimary: true,
				},
			},
		},
		Permissions: []UserPermission{{Name: "user:read", Level: 1}},
	},
	{
		ID:       "2",
		Username: "bob.johnson",
		FullName: "Bob Johnson",
		IsActive: true,
		Contact: UserContact{
			Email:     "bob.johnson@example.com",
			Phone:     ldvalue.NewOptionalString("+1234567891"),
			Addresses: []UserAddress{},
		},
		Permissions: []UserPermission{},
	},
	{
		ID:       "3",
		Username: "charlie.brown",
		FullName: "Charlie Brown",
		IsActive: true,
		Contact: UserContact{
			Email: "charlie.brown@example.com",
			Phone: ldvalue.NewOptionalString("+1987654321"),
			Addresses: []UserAddress{
				{
					Street:    "456 Oak Ave",
					City:      "Los Angeles",
					State:     ldvalue.NewOptionalString("CA"),
					ZipCode:   "90001",
					Country:   "USA",
					IsPrimary: true,
				},
			},
		},
		Permissions: []UserPermission{{Name: "user:write", Level: 2}},
	},
	{
		ID:       "4",
		Username: "diana.davis",
		FullName: "Diana Davis",
		IsActive: false,
		Contact: UserContact{
			Email:     "diana.davis@example.com",
			Phone:     ldvalue.NewOptionalString("+1987654324"),
			Addresses: []UserAddress{},
		},
		Permissions: []UserPermission{},
	},
}

// UserDetailByID returns the fixture entry with the given ID, or nil.
func UserDetailByID(id string) *UserDetail {
	for i := range UserDetailsFixture {
		if UserDetailsFixture[i].ID == id {
			return &UserDetailsFixture[i]
		}
	}
	return nil
}
