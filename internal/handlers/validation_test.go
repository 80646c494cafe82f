package handlers

import (
	"errors"
	"strings"
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"

	memorialmodels "io.winapps.thankasoldier/internal/models/submit_memorial"
	tributemodels "io.winapps.thankasoldier/internal/models/submit_tribute"
)

func TestBindingMessage_TributeOrder(t *testing.T) {
	err := binding.Validator.ValidateStruct(&tributemodels.SubmitTributeRequest{
		Author:  strings.Repeat("a", 101),
		Message: "short",
	})

	msg, ok := bindingMessage(err, tributeRules)
	assert.True(t, ok)
	assert.Equal(t, "Message must be at least 10 characters long", msg)
}

func TestBindingMessage_CountsRunes(t *testing.T) {
	err := binding.Validator.ValidateStruct(&tributemodels.SubmitTributeRequest{
		Author:       "Aïcha",
		Message:      "Merci, héros",
		Relationship: "Amie",
	})
	assert.NoError(t, err)

	err = binding.Validator.ValidateStruct(&tributemodels.SubmitTributeRequest{
		Author:       "Aïcha",
		Message:      "éééééé",
		Relationship: "Amie",
	})
	msg, _ := bindingMessage(err, tributeRules)
	assert.Equal(t, "Message must be at least 10 characters long", msg)
}

func TestBindingMessage_Memorial(t *testing.T) {
	valid := func() memorialmodels.SubmitMemorialRequest {
		return memorialmodels.SubmitMemorialRequest{
			Name: "Musa", Role: "Rifleman", Unit: "7th Division", Status: "serving",
			Biography: "Carried the radio for three winters.",
		}
	}

	cases := []struct {
		name   string
		mutate func(*memorialmodels.SubmitMemorialRequest)
		want   string
	}{
		{"whitespace biography", func(r *memorialmodels.SubmitMemorialRequest) { r.Biography = "          x " }, "Biography must be at least 10 characters"},
		{"bad death date", func(r *memorialmodels.SubmitMemorialRequest) { r.DeathDate = "2019-14-02" }, "Death date must be in YYYY-MM-DD format"},
		{"status before dates", func(r *memorialmodels.SubmitMemorialRequest) {
			r.Status = "retired"
			r.BirthDate = "yesterday"
		}, "Status must be one of fallen, serving, or gallantry"},
		{"long unit", func(r *memorialmodels.SubmitMemorialRequest) { r.Unit = strings.Repeat("u", 101) }, "Unit must be less than 100 characters"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := valid()
			tc.mutate(&req)
			msg, ok := bindingMessage(binding.Validator.ValidateStruct(&req), memorialRules)
			assert.True(t, ok)
			assert.Equal(t, tc.want, msg)
		})
	}

	req := valid()
	assert.NoError(t, binding.Validator.ValidateStruct(&req))
}

func TestBindingMessage_OtherErrors(t *testing.T) {
	_, ok := bindingMessage(errors.New("unexpected EOF"), guestbookRules)
	assert.False(t, ok)
}
