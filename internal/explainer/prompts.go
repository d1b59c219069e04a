package explainer

import "fmt"

// The two prompt templates are fixed. The submitted code is substituted
// verbatim into the %s slot; nothing else about the prompt varies per
// request. Keep the wording stable — the explanation style users see is
// defined entirely by this text.

const elementarySystemPrompt = "당신은 파이썬 코드를 초등학생에게 쉽게 설명하는 선생님입니다."

const elementaryPromptTemplate = `다음 파이썬 코드를 초등학교 고학년(12-13세) 수준에서 설명해주세요.

**중요한 원칙:**
1. 비유를 적극 활용하여 쉽게 설명하세요
2. 코드 안의 **모든 요소**를 하나하나 언급하세요 (내장/외장 모듈, 함수, 자료형, 연산자, 변수 등)
3. "(파이썬아)" 형식의 대화체로 설명하세요
4. 각 함수는 어떤 기능을 하고, 어떻게 사용하는지 괄호를 쳐서 설명하세요
5. 매우 상세하고 친절하게 설명하세요

**예시:**
import pandas as pd
pd.read_excel("Users/Downloads/around.xlsx")

설명: "(파이썬아) 판다스라는 외부 패키지를 불러와줘. 그리고 그걸 앞으로 판다스를 pd라는 이름으로 줄여서 쓸게. (파이썬아) pd(판다스) 안에 있는 'read_excel'이라는 '함수'를 사용해서, 다운로드 폴더 안에 있는 'around.xlsx'라는 이름의 엑셀 파일의 내용을 읽어줘."

파이썬 코드:
%s

위 형식을 참고하여 코드를 상세히 설명해주세요. 마크다운 형식으로 작성하세요.`

const collegeSystemPrompt = "당신은 파이썬 코드를 기술적으로 정확하게 설명하는 전문가입니다."

const collegePromptTemplate = `다음 파이썬 코드를 컴퓨터 공학과 1학년 수준에서 설명해주세요.

**중요한 원칙:**
1. 정밀하고 구체적인 기술적 설명을 제공하세요
2. 전문 용어를 사용하세요 (모듈, 함수, 메서드, 객체, 라이브러리 등)
3. 코드의 동작 원리와 구조를 설명하세요
4. 각 구문의 기능과 목적을 명확히 설명하세요
5. 필요한 경우 시간 복잡도나 메모리 사용 등 기술적 세부사항도 언급하세요

파이썬 코드:
%s

위 코드를 기술적으로 상세히 설명해주세요. 마크다운 형식으로 작성하세요.`

// elementaryPrompt builds the young-learner prompt for the given code.
func elementaryPrompt(code string) string {
	return fmt.Sprintf(elementaryPromptTemplate, code)
}

// collegePrompt builds the undergraduate-level prompt for the given code.
func collegePrompt(code string) string {
	return fmt.Sprintf(collegePromptTemplate, code)
}
