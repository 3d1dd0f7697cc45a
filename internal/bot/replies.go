package bot

import (
	"fmt"

	"github.com/xaenox/school-bot/internal/models"
)

const (
	msgParseFailure  = "요청 파싱 실패"
	msgNoUserID      = "사용자 ID를 확인할 수 없습니다."
	msgRegistryError = "사용자 정보를 처리하지 못했습니다. 잠시 후 다시 시도해주세요."
	msgOnboarding    = "안녕하세요! 사용하실 학년과 반을 입력해주세요. 예: 2 8"
	msgUsage         = "변경할 학년과 반을 입력해주세요. 예: 학년변경 2 8"
	msgRegistered    = "등록되었습니다: %d학년 %d반.\n이제 '오늘 시간표', '오늘 급식', '이번 주 학사일정' 등을 물어보세요."
	msgChanged       = "학년/반을 %d학년 %d반으로 설정했습니다.\n원하시는 기능을 선택하세요."
	msgHelp          = "무엇을 도와드릴까요?\n가능한 명령: 오늘 시간표, 내일 시간표, 오늘 급식, 9월3일 급식, 이번 주 학사일정, 이번 달 학사일정, 학년변경 2 8"

	headerTimetable     = "%d학년 %d반 %s 시간표"
	headerMeal          = "%s 급식"
	headerCalendarWeek  = "이번 주 학사일정"
	headerCalendarMonth = "이번 달 학사일정"

	noTimetableWeekend = "주말에는 시간표가 없습니다."
	noTimetable        = "해당 학년/반 시간표가 없습니다."
	noMeal             = "해당 날짜의 급식 정보가 없습니다."
	noEventsWeek       = "이번 주 학사일정이 없습니다."
	noEventsMonth      = "이번 달 학사일정이 없습니다."
)

func quickReply(label, text string) models.QuickReply {
	return models.QuickReply{Label: label, MessageText: text}
}

func defaultQuickReplies() []models.QuickReply {
	return []models.QuickReply{
		quickReply("오늘 시간표", "오늘 시간표"),
		quickReply("내일 시간표", "내일 시간표"),
		quickReply("오늘 급식", "오늘 급식"),
		quickReply("이번 주 학사일정", "이번 주 학사일정"),
		quickReply("학년/반 변경", "학년변경 2 8"),
	}
}

func onboardingQuickReplies() []models.QuickReply {
	return []models.QuickReply{
		quickReply("2학년 8반", "2 8"),
		quickReply("1학년 1반", "1 1"),
		quickReply("학년/반 도움말", "학년변경 2 8"),
	}
}

func usageQuickReplies() []models.QuickReply {
	return []models.QuickReply{
		quickReply("2학년 8반", "학년변경 2 8"),
		quickReply("1학년 1반", "학년변경 1 1"),
	}
}

// withHeader puts header on its own line above body.
func withHeader(header, body string) models.Reply {
	return models.NewReply(header+"\n"+body, defaultQuickReplies()...)
}

func registeredReply(grade, classNumber int, first bool) models.Reply {
	format := msgChanged
	if first {
		format = msgRegistered
	}
	return models.NewReply(fmt.Sprintf(format, grade, classNumber), defaultQuickReplies()...)
}

// ParseFailureReply is sent when the webhook body cannot be decoded.
func ParseFailureReply() models.Reply {
	return models.NewReply(msgParseFailure, defaultQuickReplies()...)
}
