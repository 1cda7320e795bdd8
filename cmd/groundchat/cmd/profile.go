package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"

	"groundchat/internal/domain"
)

const (
	minAge = 18
	maxAge = 120
)

type profileFlags struct {
	name      string
	age       int
	gender    string
	education string
}

func (p *profileFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&p.name, "name", "", "Your name")
	fs.IntVar(&p.age, "age", 25, fmt.Sprintf("Your age (%d-%d)", minAge, maxAge))
	fs.StringVar(&p.gender, "gender", "", "Your gender (optional)")
	fs.StringVar(&p.education, "education", "", "Education level: secondary, bachelor, master, doctorate")
}

func (p *profileFlags) profile() (domain.UserProfile, error) {
	name := strings.TrimSpace(p.name)
	education := strings.TrimSpace(p.education)
	switch {
	case name == "":
		return domain.UserProfile{}, errors.New("--name is required")
	case education == "":
		return domain.UserProfile{}, errors.New("--education is required")
	case p.age < minAge || p.age > maxAge:
		return domain.UserProfile{}, fmt.Errorf("--age must be between %d and %d", minAge, maxAge)
	}
	return domain.UserProfile{
		Name:      name,
		Age:       p.age,
		Gender:    strings.TrimSpace(p.gender),
		Education: education,
	}, nil
}
