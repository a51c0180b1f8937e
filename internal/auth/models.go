package auth

// CredentialsFile is the YAML document holding users, cookie settings and
// the emails allowed to self-register.
type CredentialsFile struct {
	Credentials   Credentials   `yaml:"credentials"`
	Cookie        Cookie        `yaml:"cookie"`
	Preauthorized Preauthorized `yaml:"preauthorized"`
}

type Credentials struct {
	Usernames map[string]User `yaml:"usernames" validate:"dive"`
}

// User is one credentials entry. Password holds the bcrypt hash.
type User struct {
	Email    string `yaml:"email" validate:"required,email"`
	Name     string `yaml:"name" validate:"required"`
	Password string `yaml:"password" validate:"required"`
}

type Cookie struct {
	Name       string  `yaml:"name" validate:"required"`
	Key        string  `yaml:"key" validate:"required"`
	ExpiryDays float64 `yaml:"expiry_days" validate:"gt=0"`
}

type Preauthorized struct {
	Emails []string `yaml:"emails" validate:"dive,email"`
}

type Profile struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Email    string `json:"email"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Email          string `json:"email" validate:"required,email"`
	Username       string `json:"username" validate:"required"`
	Name           string `json:"name" validate:"required"`
	Password       string `json:"password" validate:"required"`
	RepeatPassword string `json:"repeat_password" validate:"required"`
}

type UpdateDetailsRequest struct {
	Name  string `json:"name"`
	Email string `json:"email" validate:"omitempty,email"`
}
