package service

// extractionPrompt is the fixed instruction set sent with every receipt
// image. It pins down the exact 7-field JSON object the model must emit and
// the null-handling rule for each field. Nothing is interpolated into it, so
// a given image always produces the same request.
const extractionPrompt = `당신은 영수증을 분석하는 전문가입니다.
다음 영수증 이미지를 분석하여 JSON 형식으로 정보를 추출해주세요.

요구사항:
1. 날짜를 YYYY-MM-DD 형식으로 추출 (날짜를 찾을 수 없으면 null)
2. 상호명 추출 (상호명을 찾을 수 없으면 null)
3. 각 상품명과 가격을 배열로 추출 (상품 정보를 찾을 수 없으면 빈 배열)
4. 총액 추출 (총액을 찾을 수 없으면 null)
5. 카테고리를 추론 (가능한 경우, 예: 식비, 교통비, 쇼핑 등. 추론 불가능하면 null)
6. 신뢰도를 0-1 사이 값으로 제공 (전체적으로 얼마나 확신하는지)
7. 원본 텍스트를 rawText 필드에 포함 (가능한 한 많이 추출)

JSON 형식:
{
  "date": "YYYY-MM-DD 또는 null",
  "store": "상호명 또는 null",
  "items": [
    {"name": "상품명", "price": 금액}
  ],
  "total": 총액 또는 null,
  "category": "카테고리명 또는 null",
  "confidence": 0.0-1.0,
  "rawText": "추출된 원본 텍스트"
}

반드시 유효한 JSON 형식으로만 응답하세요. 다른 설명이나 텍스트는 포함하지 마세요.`
