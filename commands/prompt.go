package commands

import (
	"errors"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
)

func notBlank(input string) error {
	if strings.TrimSpace(input) == "" {
		return errors.New("value must not be empty")
	}
	return nil
}

func positiveInt(input string) error {
	n, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil {
		return errors.New("enter a number")
	}
	if n <= 0 {
		return errors.New("enter a number greater than zero")
	}
	return nil
}

func promptText(label string) (string, error) {
	p := promptui.Prompt{Label: label, Validate: notBlank}
	value, err := p.Run()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(value), nil
}

func promptCount(label string, def int) (int, error) {
	p := promptui.Prompt{Label: label, Default: strconv.Itoa(def), Validate: positiveInt}
	value, err := p.Run()
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(value))
}
