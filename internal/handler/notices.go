package handler

import (
	"fmt"

	"github.com/studycycle/internal/locale"
)

const (
	noticeSuccess     = "default"
	noticeDestructive = "destructive"
)

// notice 对应前端的 toast 提示
type notice struct {
	Variant     string `json:"variant"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

type noticeText struct {
	english    string
	portuguese string
}

type noticeTemplate struct {
	variant     string
	title       noticeText
	description noticeText
}

var errorTitle = noticeText{english: "Error", portuguese: "Erro"}

var (
	noticeCycleCreated = noticeTemplate{
		variant:     noticeSuccess,
		title:       noticeText{english: "Cycle created!", portuguese: "Ciclo criado!"},
		description: noticeText{english: "Your study plan was generated successfully.", portuguese: "Seu plano de estudos foi gerado com sucesso."},
	}
	noticeCycleCreateFailed = noticeTemplate{
		variant:     noticeDestructive,
		title:       errorTitle,
		description: noticeText{english: "Could not create the cycle.", portuguese: "Não foi possível criar o ciclo."},
	}
	noticeHoursUpdateFailed = noticeTemplate{
		variant:     noticeDestructive,
		title:       errorTitle,
		description: noticeText{english: "Could not update the hours.", portuguese: "Não foi possível atualizar as horas."},
	}
	noticeCycleReset = noticeTemplate{
		variant:     noticeSuccess,
		title:       noticeText{english: "Cycle reset", portuguese: "Ciclo resetado"},
		description: noticeText{english: "You can create a new study cycle.", portuguese: "Você pode criar um novo ciclo de estudos."},
	}
	noticeCycleResetFailed = noticeTemplate{
		variant:     noticeDestructive,
		title:       errorTitle,
		description: noticeText{english: "Could not reset the cycle.", portuguese: "Não foi possível resetar o ciclo."},
	}
	noticeSubjectAdded = noticeTemplate{
		variant:     noticeSuccess,
		title:       noticeText{english: "Subject added!", portuguese: "Matéria adicionada!"},
		description: noticeText{english: "%s was added successfully.", portuguese: "%s foi adicionada com sucesso."},
	}
	noticeSubjectAddFailed = noticeTemplate{
		variant:     noticeDestructive,
		title:       errorTitle,
		description: noticeText{english: "Could not add the subject.", portuguese: "Não foi possível adicionar a matéria."},
	}
	noticeSubjectRemoved = noticeTemplate{
		variant:     noticeSuccess,
		title:       noticeText{english: "Subject removed", portuguese: "Matéria removida"},
		description: noticeText{english: "The subject was removed successfully.", portuguese: "A matéria foi removida com sucesso."},
	}
	noticeSubjectRemoveFailed = noticeTemplate{
		variant:     noticeDestructive,
		title:       errorTitle,
		description: noticeText{english: "Could not remove the subject.", portuguese: "Não foi possível remover a matéria."},
	}
	noticeWeeklyHoursInvalid = noticeTemplate{
		variant:     noticeDestructive,
		title:       errorTitle,
		description: noticeText{english: "Enter a value between 1 and 168 hours", portuguese: "Digite um valor entre 1 e 168 horas"},
	}
	noticeNoSubjects = noticeTemplate{
		variant:     noticeDestructive,
		title:       errorTitle,
		description: noticeText{english: "Add at least one subject before creating a cycle.", portuguese: "Adicione pelo menos uma matéria antes de criar um ciclo."},
	}
)

func (t noticeText) pick(language string) string {
	return locale.Pick(language, t.english, t.portuguese)
}

// render 生成指定语言的提示，args 填充描述中的占位符
func (t noticeTemplate) render(language string, args ...any) notice {
	description := t.description.pick(language)
	if len(args) > 0 {
		description = fmt.Sprintf(description, args...)
	}
	return notice{
		Variant:     t.variant,
		Title:       t.title.pick(language),
		Description: description,
	}
}
