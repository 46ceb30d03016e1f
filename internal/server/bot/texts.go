package bot

const (
	buttonStart = "Старт"
	buttonStats = "Ваша статистика"
)

const welcomeText = `
🐕‍🦺 Привет, друг! 🐩

Нам необходимо собрать много фото какающих собак 💩🐶.
Помоги нам обучить нейросеть, которая будет находить недобросовестных хозяев,
не убирающих за своими питомцами! 🕵️‍♂️🔍

📸 Отправьте мне фото собаки "в процессе", можно с разных ракурсов
🗄️ Я сохраню его в нашей базе данных
🖼️ Чем больше кадров - тем точнее будет наша нейросеть
📊 Вы сможете посмотреть свою статистику

🚀 Вместе научим ИИ находить нарушителей чистоты! ♻️

P.S. Каждая отправленная фотография - это шаг к цивилизованному выгулу собак! 🏆
`

const (
	textServerError     = "⛔ Ошибка сервера. Попробуйте позже."
	textSuspended       = "⛔ Вы заблокированы!"
	textDuplicate       = "⏭️ Это фото уже было загружено ранее"
	textSavedWithDog    = "✅ Фото сохранено! 🐶 Обнаружена собака!"
	textSavedWithoutDog = "✅ Фото сохранено! (Собака не обнаружена)"
	textSaveFailed      = "❌ Ошибка при сохранении фото"
	textUnexpected      = "❌ Произошла непредвиденная ошибка"
	textCommandFailed   = "❌ Произошла ошибка при обработке команды"

	textStatsFailed = "❌ Произошла ошибка при получении статистики"
	textNoPhotos    = "📊 Вы еще не загрузили ни одного фото"
	textStatsFormat = "📊 <b>Ваша статистика:</b>\n\n" +
		"📸 Всего фото: <b>%d</b>\n" +
		"🐶 Фото с собаками: <b>%d</b>\n" +
		"📈 Процент собак: <b>%.1f%%</b>\n\n" +
		"%s"
	textDogLover = "🐾Вы большой любитель собак!🐕"
)

// dogLoverPercent is the share of positive photos above which the stats
// reply gets an extra line.
const dogLoverPercent = 90
